package identity

import (
	"context"
	"time"

	"github.com/projectmgmt/backend/internal/domain/identity"
	"github.com/projectmgmt/backend/internal/domain/shared"
	"github.com/projectmgmt/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// PictureURLSigner issues temporary download URLs for stored objects
type PictureURLSigner interface {
	PresignGet(ctx context.Context, key string) (url string, expiresAt time.Time, err error)
}

// UserService serves the user endpoints
type UserService struct {
	repo   identity.UserRepository
	signer PictureURLSigner
}

// NewUserService creates a new UserService. signer may be nil when object
// storage is not configured.
func NewUserService(repo identity.UserRepository, signer PictureURLSigner) *UserService {
	return &UserService{repo: repo, signer: signer}
}

// List returns every user
func (s *UserService) List(ctx context.Context) ([]UserResponse, error) {
	users, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return ToUserResponses(users), nil
}

// GetByCognitoID looks a user up by identity-provider subject
func (s *UserService) GetByCognitoID(ctx context.Context, cognitoID string) (*UserResponse, error) {
	u, err := s.repo.FindByCognitoID(ctx, cognitoID)
	if err != nil {
		return nil, err
	}
	resp := ToUserResponse(u)
	return &resp, nil
}

// ProfilePicture returns a presigned URL for the user's stored picture
func (s *UserService) ProfilePicture(ctx context.Context, cognitoID string) (*ProfilePictureResponse, error) {
	if s.signer == nil {
		return nil, shared.ErrUnavailable
	}

	u, err := s.repo.FindByCognitoID(ctx, cognitoID)
	if err != nil {
		return nil, err
	}
	if !u.HasProfilePicture() {
		return nil, shared.NewNotFoundError("profile picture", cognitoID)
	}

	url, expiresAt, err := s.signer.PresignGet(ctx, *u.ProfilePictureURL)
	if err != nil {
		logger.L(ctx).Error("Failed to presign profile picture",
			zap.Int("user_id", u.UserID),
			zap.Error(err),
		)
		return nil, err
	}
	resp := &ProfilePictureResponse{URL: url}
	if !expiresAt.IsZero() {
		resp.ExpiresAt = &expiresAt
	}
	return resp, nil
}
