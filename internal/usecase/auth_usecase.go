package usecase

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"net/http"
	"strings"
	"time"

	"app/internal/config"
	"app/internal/domain/model"
	repo "app/internal/repository"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// accesstokenの有効期限
const accessTokenTTL = 15 * time.Minute

// refreshtokenの有効期限
const refreshTokenTTL = 7 * 24 * time.Hour

// usecaseがValidatorInterfaceに依存する約束
type AuthValidator interface {
	ValidateRegister(ctx context.Context, email string, password string) error
	ValidateLogin(ctx context.Context, email string, password string) error
}

type AuthUsecase struct {
	cfg       config.Config
	users     repo.UserRepository
	rtRepo    repo.RefreshTokenRepository
	validator AuthValidator
}

func NewAuthUsecase(
	cfg config.Config,
	users repo.UserRepository,
	rtRepo repo.RefreshTokenRepository,
	validator AuthValidator,
) *AuthUsecase {
	return &AuthUsecase{
		cfg:       cfg,
		users:     users,
		rtRepo:    rtRepo,
		validator: validator,
	}
}

type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Phone     *string
	Role      model.Role // 空ならcustomer
}

type AuthOutput struct {
	User         model.User `json:"user"`
	AccessToken  string     `json:"access_token"`
	RefreshToken string     `json:"refresh_token"`
	ExpiresIn    int        `json:"expires_in"`
}

func (u *AuthUsecase) Register(ctx context.Context, in RegisterInput) (AuthOutput, error) {
	if err := u.validator.ValidateRegister(ctx, in.Email, in.Password); err != nil {
		return AuthOutput{}, err
	}

	email := strings.ToLower(strings.TrimSpace(in.Email))

	//email重複チェック
	existing, err := u.users.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, repo.ErrNotFound) {
		return AuthOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if existing != nil {
		return AuthOutput{}, NewHTTPError(http.StatusConflict, "user with this email already exists")
	}

	//パスワードは必ずハッシュ化して保存（平文保存しない）
	pwHash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return AuthOutput{}, NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	role := in.Role
	if role == "" {
		role = model.RoleCustomer
	}
	if role != model.RoleAdmin && role != model.RoleRestaurantOwner && role != model.RoleCustomer {
		return AuthOutput{}, NewHTTPError(http.StatusBadRequest, "invalid role")
	}

	user := &model.User{
		Email:        email,
		PasswordHash: string(pwHash),
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Phone:        in.Phone,
		Role:         role,
		IsActive:     true,
	}

	if err := u.users.Create(ctx, user); err != nil {
		//unique制約違反は同時登録の競合
		return AuthOutput{}, NewHTTPError(http.StatusConflict, "user with this email already exists")
	}

	return u.issueTokens(ctx, user)
}

type LoginInput struct {
	Email    string
	Password string
}

func (u *AuthUsecase) Login(ctx context.Context, in LoginInput) (AuthOutput, error) {
	if err := u.validator.ValidateLogin(ctx, in.Email, in.Password); err != nil {
		return AuthOutput{}, err
	}

	email := strings.ToLower(strings.TrimSpace(in.Email))

	//不明ユーザー・停止ユーザー・パスワード不一致はすべて同じ401を返す
	user, err := u.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return AuthOutput{}, NewHTTPError(http.StatusUnauthorized, "invalid email or password")
		}
		return AuthOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if !user.IsActive {
		return AuthOutput{}, NewHTTPError(http.StatusUnauthorized, "invalid email or password")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return AuthOutput{}, NewHTTPError(http.StatusUnauthorized, "invalid email or password")
	}

	//last_login更新（失敗してもログイン自体は通す）
	now := time.Now()
	user.LastLoginAt = &now
	_ = u.users.Update(ctx, user)

	return u.issueTokens(ctx, user)
}

type RefreshOutput struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
}

func (u *AuthUsecase) Refresh(ctx context.Context, refreshPlain string) (RefreshOutput, error) {
	if strings.TrimSpace(refreshPlain) == "" {
		return RefreshOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	rt, err := u.rtRepo.FindByTokenHash(ctx, hashToken(refreshPlain))
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return RefreshOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
		}
		return RefreshOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	now := time.Now()
	if rt.ExpiresAt.Before(now) || rt.RevokedAt != nil {
		return RefreshOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	user, err := u.users.FindByID(ctx, rt.UserID)
	if err != nil || !user.IsActive {
		return RefreshOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	//旧tokenを失効して新tokenへローテーション
	if err := u.rtRepo.Revoke(ctx, rt.ID, now); err != nil {
		return RefreshOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	out, err := u.issueTokens(ctx, user)
	if err != nil {
		return RefreshOutput{}, err
	}

	return RefreshOutput{
		AccessToken:  out.AccessToken,
		RefreshToken: out.RefreshToken,
		ExpiresIn:    out.ExpiresIn,
	}, nil
}

func (u *AuthUsecase) Logout(ctx context.Context, refreshPlain string) error {
	if strings.TrimSpace(refreshPlain) == "" {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	rt, err := u.rtRepo.FindByTokenHash(ctx, hashToken(refreshPlain))
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusUnauthorized, "unauthorized")
		}
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if err := u.rtRepo.Revoke(ctx, rt.ID, time.Now()); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}

// LogoutAll は本人の全デバイスのrefresh tokenを破棄する。
func (u *AuthUsecase) LogoutAll(ctx context.Context, userID int64) error {
	if userID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	if err := u.rtRepo.DeleteAllByUserID(ctx, userID); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}

func (u *AuthUsecase) Me(ctx context.Context, userID int64) (model.User, error) {
	if userID <= 0 {
		return model.User{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	user, err := u.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return model.User{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
		}
		return model.User{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if !user.IsActive {
		return model.User{}, NewHTTPError(http.StatusForbidden, "forbidden")
	}
	return *user, nil
}

// access+refresh発行。refreshはhashのみ保存。
func (u *AuthUsecase) issueTokens(ctx context.Context, user *model.User) (AuthOutput, error) {
	accessToken, err := u.issueAccessToken(user)
	if err != nil {
		return AuthOutput{}, NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	refreshPlain, refreshHash, err := newRandomTokenAndHash()
	if err != nil {
		return AuthOutput{}, NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	rt := &model.RefreshToken{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		TokenHash: refreshHash,
		ExpiresAt: time.Now().Add(refreshTokenTTL),
	}
	if err := u.rtRepo.Create(ctx, rt); err != nil {
		return AuthOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	safeUser := *user
	safeUser.PasswordHash = ""

	return AuthOutput{
		User:         safeUser,
		AccessToken:  accessToken,
		RefreshToken: refreshPlain,
		ExpiresIn:    int(accessTokenTTL.Seconds()),
	}, nil
}

// jwt発行
func (u *AuthUsecase) issueAccessToken(user *model.User) (string, error) {
	now := time.Now()

	claims := jwt.MapClaims{
		"sub":   user.ID,
		"email": user.Email,
		"role":  string(user.Role),
		"iat":   now.Unix(),
		"exp":   now.Add(accessTokenTTL).Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(u.cfg.JWTSecret))
}

// refresh token生成（平文 + DB保存hash）
func newRandomTokenAndHash() (plain string, hash string, err error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", "", err
	}

	plain = base64.RawURLEncoding.EncodeToString(b)
	return plain, hashToken(plain), nil
}

func hashToken(plain string) string {
	sum := sha256.Sum256([]byte(plain))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}
