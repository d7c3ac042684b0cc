package repositories

import (
	"context"

	"railbook/internal/db"
	"railbook/internal/domain/models"
	"railbook/internal/utils"
)

type UserRepo struct{}

func UserKey(email string) string {
	return "users/" + utils.NormalizeEmail(email)
}

// GetByEmail matches the email case-insensitively.
func (UserRepo) GetByEmail(ctx context.Context, tx db.Tx, email string) (models.User, bool, error) {
	var u models.User
	ok, err := db.GetJSON(ctx, tx, UserKey(email), &u)
	if err != nil || !ok {
		return models.User{}, false, err
	}
	return u, true, nil
}

func (UserRepo) Put(ctx context.Context, tx db.Tx, u models.User) error {
	return db.PutJSON(ctx, tx, UserKey(u.Email), u)
}
