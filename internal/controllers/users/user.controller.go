package userController

import (
	"context"

	"musicbot/config"
	. "musicbot/internal/models"
	"musicbot/internal/repositories"

	logger "github.com/Bparsons0904/goLogger"
)

type UserController struct {
	userRepo repositories.UserRepository
	Config   config.Config
	log      logger.Logger
}

type UserControllerInterface interface {
	Register(ctx context.Context, profile ChatProfile) (*User, error)
	GetUser(ctx context.Context, telegramID int64) (*User, error)
}

func New(repos repositories.Repository, config config.Config) UserControllerInterface {
	return &UserController{
		userRepo: repos.User,
		Config:   config,
		log:      logger.New("userController"),
	}
}

// Register records the chat user, refreshing their profile fields.
func (uc *UserController) Register(ctx context.Context, profile ChatProfile) (*User, error) {
	log := uc.log.Function("Register")

	if profile.TelegramID == 0 {
		return nil, log.ErrMsg("telegram id is required")
	}

	user, err := uc.userRepo.FindOrCreateByTelegram(ctx, profile)
	if err != nil {
		return nil, log.Err("failed to register user", err, "telegramID", profile.TelegramID)
	}
	return user, nil
}

func (uc *UserController) GetUser(ctx context.Context, telegramID int64) (*User, error) {
	return uc.userRepo.GetByTelegramID(ctx, telegramID)
}
