package client

import (
	"context"

	"github.com/dmitrijs2005/supportportal/internal/client/models"
)

// Client is the remote user-directory API as the client core consumes it.
type Client interface {
	Login(ctx context.Context, creds models.Credentials) (*LoginResult, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	AddUser(ctx context.Context, form UserForm) (*models.User, error)
	UpdateUser(ctx context.Context, form UserForm) (*models.User, error)
	ResetPassword(ctx context.Context, email string) (*models.StatusMessage, error)
	UpdateProfileImage(ctx context.Context, username string, image models.Image, progress ProgressFunc) (*UploadResult, error)
	DeleteUser(ctx context.Context, username string) (*models.StatusMessage, error)
	Close() error
}

// LoginResult holds what a successful login hands back: the bearer token
// from the response header and the identity from the body.
type LoginResult struct {
	Token string
	User  models.User
}

// UserForm is the multipart payload of create and update calls.
// CurrentUsername is empty for create.
type UserForm struct {
	CurrentUsername string
	User            models.User
	Image           *models.Image
}

// UploadResult is the terminal response of a profile image transfer.
type UploadResult struct {
	StatusCode int
	User       *models.User
}

// ProgressFunc receives the running byte count of an upload body.
type ProgressFunc func(loaded, total int64)
