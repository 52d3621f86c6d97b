package repositories

import (
	"context"
	"fmt"
	"strconv"

	"prompteria-api/models"
)

// maxNameAttempts bounds how often CreateWithUniqueName re-picks a name
// after losing a race for it.
const maxNameAttempts = 5

type UserRepository struct {
	conn Conn
}

func NewUserRepository(conn Conn) *UserRepository {
	return &UserRepository{conn: conn}
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	return r.findOne(ctx, "id = ?", id)
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, "email = ?", email)
}

// CreateWithUniqueName inserts user under baseName, or baseName1, baseName2...
// when the name is taken. If another request created the same email first,
// that user is returned with created=false.
func (r *UserRepository) CreateWithUniqueName(ctx context.Context, user *models.User, baseName string) (*models.User, bool, error) {
	db, err := r.conn.DB(ctx)
	if err != nil {
		return nil, false, err
	}

	var createErr error
	for attempt := 0; attempt < maxNameAttempts; attempt++ {
		name, err := r.uniqueName(ctx, baseName)
		if err != nil {
			return nil, false, err
		}
		user.Name = name

		createErr = db.Create(user).Error
		if createErr == nil {
			return user, true, nil
		}

		// Lost a race: either the same account was created concurrently,
		// or someone else took the name between the check and the insert.
		existing, findErr := r.FindByEmail(ctx, user.Email)
		if findErr == nil {
			return existing, false, nil
		}
	}

	return nil, false, fmt.Errorf("create user: %w", createErr)
}

func (r *UserRepository) uniqueName(ctx context.Context, baseName string) (string, error) {
	db, err := r.conn.DB(ctx)
	if err != nil {
		return "", err
	}

	name := baseName
	counter := 1

	for {
		var count int64
		if err := db.Model(&models.User{}).Where("name = ?", name).Count(&count).Error; err != nil {
			return "", fmt.Errorf("check name: %w", err)
		}
		if count == 0 {
			return name, nil
		}
		name = baseName + strconv.Itoa(counter)
		counter++
	}
}

func (r *UserRepository) findOne(ctx context.Context, query string, arg string) (*models.User, error) {
	db, err := r.conn.DB(ctx)
	if err != nil {
		return nil, err
	}

	var user models.User
	if err := db.Where(query, arg).First(&user).Error; err != nil {
		return nil, translate(err)
	}

	return &user, nil
}
