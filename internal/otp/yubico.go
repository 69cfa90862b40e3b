package otp

import (
	"context"

	"github.com/GeertJohan/yubigo"
)

type yubicoValidator struct {
	auth *yubigo.YubiAuth
}

// NewYubicoValidator 使用 YubiCloud 校验 OTP，可直接作为 ValidatorFactory
func NewYubicoValidator(clientID, secretKey string) (TokenValidator, error) {
	auth, err := yubigo.NewYubiAuth(clientID, secretKey)
	if err != nil {
		return nil, err
	}
	return &yubicoValidator{auth: auth}, nil
}

func (y *yubicoValidator) Verify(ctx context.Context, token string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	// 格式不合法的 token 视为拒绝而不是服务故障
	if _, _, err := yubigo.ParseOTP(token); err != nil {
		return false, nil
	}
	_, ok, err := y.auth.Verify(token)
	if err != nil {
		return false, err
	}
	return ok, nil
}
