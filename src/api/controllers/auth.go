package controllers

import (
	"context"
	"errors"
	"time"

	"finance/src/models"
	"finance/src/repositories"
	"finance/src/schemas"

	"github.com/go-chi/jwtauth"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

type AuthControllerI interface {
	Register(ctx context.Context, req *schemas.RegisterRequest) (*schemas.RegisterResponse, error)
	Login(ctx context.Context, req *schemas.LoginRequest) (*schemas.TokenResponse, error)
}

type AuthController struct {
	users        repositories.UserRepository
	tokenAuth    *jwtauth.JWTAuth
	tokenTTL     time.Duration
	startingCash decimal.Decimal
}

func NewAuthController(users repositories.UserRepository, tokenAuth *jwtauth.JWTAuth, tokenTTL time.Duration, startingCash decimal.Decimal) *AuthController {
	return &AuthController{
		users:        users,
		tokenAuth:    tokenAuth,
		tokenTTL:     tokenTTL,
		startingCash: startingCash,
	}
}

func (c *AuthController) Register(ctx context.Context, req *schemas.RegisterRequest) (*schemas.RegisterResponse, error) {
	if req.Username == "" || req.Password == "" {
		return nil, ErrInvalidInput
	}
	if req.Password != req.Confirmation {
		return nil, ErrPasswordMismatch
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username:     req.Username,
		PasswordHash: string(hash),
		Cash:         c.startingCash,
	}
	if err := c.users.Create(ctx, user); err != nil {
		return nil, err
	}

	return &schemas.RegisterResponse{ID: user.ID, Username: user.Username}, nil
}

func (c *AuthController) Login(ctx context.Context, req *schemas.LoginRequest) (*schemas.TokenResponse, error) {
	if req.Username == "" || req.Password == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := c.users.GetByUsername(ctx, req.Username)
	if errors.Is(err, repositories.ErrUserNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	claims := map[string]interface{}{"user_id": user.ID}
	jwtauth.SetIssuedNow(claims)
	jwtauth.SetExpiryIn(claims, c.tokenTTL)

	_, tokenString, err := c.tokenAuth.Encode(claims)
	if err != nil {
		return nil, err
	}

	return &schemas.TokenResponse{
		AccessToken: tokenString,
		TokenType:   "bearer",
		ExpiresIn:   int(c.tokenTTL.Seconds()),
	}, nil
}
