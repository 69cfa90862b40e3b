package otp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/d60-Lab/birdnest/config"
	"github.com/d60-Lab/birdnest/internal/secret"
)

// PrefixLength YubiKey OTP 前 12 位为设备公开 ID
const PrefixLength = 12

// Reason 拒绝原因
type Reason string

const (
	ReasonUnknownToken     Reason = "unknown token"
	ReasonValidationFailed Reason = "failed to validate"
)

// Result 校验结果。Allowed 为 false 时 Reason 说明原因
type Result struct {
	Allowed bool
	Reason  Reason
}

func allowed() Result        { return Result{Allowed: true} }
func denied(r Reason) Result { return Result{Reason: r} }

func (r Result) String() string {
	if r.Allowed {
		return "allowed"
	}
	return "denied: " + string(r.Reason)
}

// ErrMalformedCredentials 凭据对象不是 "client_id,secret_key"
var ErrMalformedCredentials = errors.New("malformed validation credentials")

// TokenValidator 远端 OTP 校验服务
type TokenValidator interface {
	Verify(ctx context.Context, token string) (bool, error)
}

// ValidatorFactory 用凭据构造远端校验客户端
type ValidatorFactory func(clientID, secretKey string) (TokenValidator, error)

type credentials struct {
	clientID  string
	secretKey string
}

// Verifier 两段式校验：先本地比较设备前缀，匹配后才调用远端服务。
// 凭据每次重新读取，远端客户端按凭据复用，凭据轮换时才重建
type Verifier struct {
	loader       secret.Loader
	cfg          config.SecretsConfig
	newValidator ValidatorFactory
	log          *zap.Logger
	tracer       trace.Tracer

	mu        sync.Mutex
	creds     credentials
	validator TokenValidator
}

func NewVerifier(loader secret.Loader, cfg config.SecretsConfig, factory ValidatorFactory, log *zap.Logger) *Verifier {
	if log == nil {
		log = zap.NewNop()
	}
	return &Verifier{
		loader:       loader,
		cfg:          cfg,
		newValidator: factory,
		log:          log,
		tracer:       otel.Tracer("github.com/d60-Lab/birdnest/internal/otp"),
	}
}

// Verify 返回的 error 只表示密钥不可用或远端不可达，拒绝通过 Result 表达
func (v *Verifier) Verify(ctx context.Context, token string) (res Result, err error) {
	ctx, span := v.tracer.Start(ctx, "otp.Verify")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetAttributes(attribute.Bool("otp.allowed", res.Allowed), attribute.String("otp.reason", string(res.Reason)))
		}
		span.End()
	}()

	owner, err := v.loadOwner(ctx)
	if err != nil {
		return Result{}, err
	}
	creds, err := v.loadCredentials(ctx)
	if err != nil {
		return Result{}, err
	}

	if !matchesOwner(token, owner) {
		v.log.Warn("Denied unknown token", zap.String("token", token))
		return denied(ReasonUnknownToken), nil
	}

	validator, err := v.validatorFor(creds)
	if err != nil {
		return Result{}, err
	}
	ok, err := validator.Verify(ctx, token)
	if err != nil {
		return Result{}, fmt.Errorf("validate token: %w", err)
	}
	if !ok {
		v.log.Warn("Token failed to validate", zap.String("token", token))
		return denied(ReasonValidationFailed), nil
	}
	return allowed(), nil
}

func (v *Verifier) loadOwner(ctx context.Context) (string, error) {
	body, err := v.loader.Fetch(ctx, v.cfg.Bucket, v.cfg.OwnerKey)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(body)), nil
}

func (v *Verifier) loadCredentials(ctx context.Context) (credentials, error) {
	body, err := v.loader.Fetch(ctx, v.cfg.Bucket, v.cfg.CredentialsKey)
	if err != nil {
		return credentials{}, err
	}
	clientID, secretKey, ok := strings.Cut(strings.TrimSpace(string(body)), ",")
	if !ok {
		return credentials{}, ErrMalformedCredentials
	}
	return credentials{clientID: clientID, secretKey: secretKey}, nil
}

// validatorFor 凭据未变时复用已有客户端
func (v *Verifier) validatorFor(creds credentials) (TokenValidator, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.validator != nil && v.creds == creds {
		return v.validator, nil
	}
	validator, err := v.newValidator(creds.clientID, creds.secretKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedCredentials, err)
	}
	v.creds = creds
	v.validator = validator
	return validator, nil
}

func matchesOwner(token, owner string) bool {
	if len(token) < PrefixLength {
		return false
	}
	return token[:PrefixLength] == owner
}
