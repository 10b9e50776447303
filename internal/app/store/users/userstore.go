// internal/app/store/users/userstore.go
package userstore

import (
	"context"
	"errors"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/fixtrack/fixtrack/internal/app/system/inputval"
	"github.com/fixtrack/fixtrack/internal/app/system/normalize"
	"github.com/fixtrack/fixtrack/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrNotFound is returned when no user matches the lookup.
	ErrNotFound = errors.New("user not found")
	// ErrDuplicateEmail is returned by Create when the email is taken.
	ErrDuplicateEmail = errors.New("an account with this email already exists")
	// ErrBadCredentials is returned by Authenticate on a wrong email or
	// password. The two cases are deliberately indistinguishable.
	ErrBadCredentials = errors.New("invalid email or password")
)

type Store struct {
	c   *mongo.Collection
	log *zap.Logger
}

func New(db *mongo.Database, logger *zap.Logger) *Store {
	return &Store{c: db.Collection("users"), log: logger}
}

// Create registers a new account. The password is bcrypt-hashed at the
// default cost; the unique index on email turns races into
// ErrDuplicateEmail.
func (s *Store) Create(ctx context.Context, email, password, fullName, role string) (models.User, error) {
	now := time.Now().UTC()

	u := models.User{
		ID:       primitive.NewObjectID(),
		Email:    normalize.Email(email),
		FullName: normalize.Name(fullName),
		Role:     normalize.Role(role),
		Status:   "active",

		CreatedAt: now,
		UpdatedAt: now,
	}

	verr := inputval.ValidateUser(u)
	if password == "" {
		if verr == nil {
			verr = &inputval.ValidationError{}
		}
		verr.Errors = append(verr.Errors, "password is required")
	}
	if verr != nil {
		return models.User{}, verr
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, err
	}
	u.PasswordHash = string(hash)

	if _, err := s.c.InsertOne(ctx, u); err != nil {
		if wafflemongo.IsDup(err) {
			return models.User{}, ErrDuplicateEmail
		}
		return models.User{}, err
	}
	return u, nil
}

// Authenticate verifies the email/password pair against the stored
// hash. Disabled accounts fail the same way as wrong passwords.
func (s *Store) Authenticate(ctx context.Context, email, password string) (models.User, error) {
	u, err := s.GetByEmail(ctx, email)
	if errors.Is(err, ErrNotFound) {
		return models.User{}, ErrBadCredentials
	}
	if err != nil {
		return models.User{}, err
	}
	if u.Status == "disabled" {
		return models.User{}, ErrBadCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return models.User{}, ErrBadCredentials
	}
	return u, nil
}

// GetByEmail returns the user with the given (normalized) email.
func (s *Store) GetByEmail(ctx context.Context, email string) (models.User, error) {
	var u models.User
	err := s.c.FindOne(ctx, bson.M{"email": normalize.Email(email)}).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.User{}, ErrNotFound
	}
	if err != nil {
		return models.User{}, err
	}
	return u, nil
}

// GetByID returns the user with the given ID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.User, error) {
	var u models.User
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.User{}, ErrNotFound
	}
	if err != nil {
		return models.User{}, err
	}
	return u, nil
}

// SetRole changes a user's role. Returns ErrNotFound when the user
// does not exist and a ValidationError for an unknown role.
func (s *Store) SetRole(ctx context.Context, id primitive.ObjectID, role string) error {
	role = normalize.Role(role)
	if !models.IsValidRole(role) {
		return &inputval.ValidationError{Errors: []string{"role must be one of admin, staff"}}
	}
	res, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"role":       role,
		"updated_at": time.Now().UTC(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// EnsureAdmin promotes the account with the given email to admin. It
// runs at startup from the admin_email config key; a missing account is
// logged, not an error — registration will grant the role instead when
// that email signs up.
func (s *Store) EnsureAdmin(ctx context.Context, email string) error {
	email = normalize.Email(email)
	if email == "" {
		return nil
	}

	u, err := s.GetByEmail(ctx, email)
	if errors.Is(err, ErrNotFound) {
		s.log.Info("admin account not registered yet; role will be granted at registration",
			zap.String("email", email))
		return nil
	}
	if err != nil {
		return err
	}
	if u.Role == models.RoleAdmin {
		return nil
	}

	if err := s.SetRole(ctx, u.ID, models.RoleAdmin); err != nil {
		return err
	}
	s.log.Info("promoted account to admin", zap.String("email", email))
	return nil
}
