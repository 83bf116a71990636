package usecase

import (
	"context"
	"errors"

	"linklens/internal/domain/credential"
	"linklens/internal/pkg/jwt"
	ucauth "linklens/internal/usecase/auth"
)

var (
	ErrUnauthorized        = errors.New("unauthorized")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	ErrRefreshTokenExpired = errors.New("refresh token expired")
	ErrInternal            = errors.New("internal error")
)

type AuthUsecase interface {
	Register(ctx context.Context, in ucauth.RegisterInput) (credential.Credential, string, string, error)
	Login(ctx context.Context, in ucauth.LoginInput) (credential.Credential, string, string, error)
	Refresh(ctx context.Context, refreshToken string) (string, string, error)
}

type Auth struct {
	authSvc *ucauth.Service
	jwt     jwt.Service
}

func NewAuthUsecase(authSvc *ucauth.Service, jwtSvc jwt.Service) *Auth {
	return &Auth{authSvc: authSvc, jwt: jwtSvc}
}

func (u *Auth) Register(ctx context.Context, in ucauth.RegisterInput) (credential.Credential, string, string, error) {
	c, err := u.authSvc.Register(ctx, in)
	if err != nil {
		return credential.Credential{}, "", "", err
	}
	access, refresh, err := u.issuePair(c)
	if err != nil {
		return credential.Credential{}, "", "", err
	}
	return c, access, refresh, nil
}

func (u *Auth) Login(ctx context.Context, in ucauth.LoginInput) (credential.Credential, string, string, error) {
	c, err := u.authSvc.Login(ctx, in)
	if err != nil {
		return credential.Credential{}, "", "", err
	}
	access, refresh, err := u.issuePair(c)
	if err != nil {
		return credential.Credential{}, "", "", err
	}
	return c, access, refresh, nil
}

func (u *Auth) Refresh(ctx context.Context, refreshToken string) (string, string, error) {
	if refreshToken == "" {
		return "", "", ErrUnauthorized
	}

	claims, err := u.jwt.ValidateToken(refreshToken)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", "", ErrRefreshTokenExpired
		}
		return "", "", ErrInvalidRefreshToken
	}

	if !u.jwt.IsRefreshToken(claims) || claims.TokenType != jwt.TokenTypeRefresh {
		return "", "", ErrInvalidRefreshToken
	}

	c, err := u.authSvc.GetBySubject(ctx, claims.Subject)
	if err != nil {
		return "", "", ErrInternal
	}

	access, newRefresh, err := u.issuePair(c)
	if err != nil {
		return "", "", err
	}
	return access, newRefresh, nil
}

// issuePair embeds the credential's registration hints in the access token
// so session bootstrap can hand them to provisioning as identity claims.
func (u *Auth) issuePair(c credential.Credential) (string, string, error) {
	access, err := u.jwt.GenerateAccessToken(c.SubjectID, jwt.IdentityHints{
		Email:      c.Email,
		Username:   c.UsernameHint,
		GivenName:  c.FirstName,
		FamilyName: c.LastName,
		FullName:   c.FullName,
	})
	if err != nil {
		return "", "", ErrInternal
	}
	refresh, err := u.jwt.GenerateRefreshToken(c.SubjectID)
	if err != nil {
		return "", "", ErrInternal
	}
	return access, refresh, nil
}
