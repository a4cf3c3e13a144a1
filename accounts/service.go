package accounts

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/kbukum/backend-template/auth/jwt"
	"github.com/kbukum/backend-template/auth/password"
	"github.com/kbukum/backend-template/database"
	apperrors "github.com/kbukum/backend-template/errors"
	"github.com/kbukum/backend-template/logger"
	"github.com/kbukum/backend-template/validation"
)

const (
	msgNoActiveAccount = "No active account found with the given credentials"
	msgUserNotFound    = "User not found"
	msgUserInactive    = "User is inactive"
	msgUsernameTaken   = "A user with that username already exists."
	msgPasswordsDiffer = "The two password fields didn't match."
	msgInvalidUsername = "Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters."
)

var usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)

// TokenService is the token service used by accounts.
type TokenService = jwt.Service[*jwt.Claims]

// TokenPair is the response of a login. Refresh is empty when only an
// access token is issued.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh,omitempty"`
}

// RegisterInput is the payload of a registration request.
type RegisterInput struct {
	Username  string `json:"username" validate:"required,max=150"`
	Email     string `json:"email" validate:"omitempty,email,max=254"`
	FirstName string `json:"first_name" validate:"max=150"`
	LastName  string `json:"last_name" validate:"max=150"`
	Password  string `json:"password" validate:"required"`
	Password2 string `json:"password2" validate:"required"`
}

// Service registers users and issues, refreshes and revokes their tokens.
type Service struct {
	db       *database.DB
	tokens   *TokenService
	hasher   password.Hasher
	strength *password.Validator
	log      *logger.Logger
	now      func() time.Time
}

// NewService wires the account service.
func NewService(db *database.DB, tokens *TokenService, hasher password.Hasher, strength *password.Validator, log *logger.Logger) *Service {
	return &Service{
		db:       db,
		tokens:   tokens,
		hasher:   hasher,
		strength: strength,
		log:      log.WithComponent("accounts"),
		now:      time.Now,
	}
}

// Register validates in and creates an active user.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*User, error) {
	if err := validation.Validate(in); err != nil {
		return nil, err
	}

	v := validation.New()
	v.Pattern("username", in.Username, usernamePattern, msgInvalidUsername)
	v.Custom(in.Password == in.Password2, "password2", msgPasswordsDiffer)
	for _, m := range s.strength.Check(in.Password,
		password.Attribute{Name: "username", Value: in.Username},
		password.Attribute{Name: "first name", Value: in.FirstName},
		password.Attribute{Name: "last name", Value: in.LastName},
		password.Attribute{Name: "email address", Value: in.Email},
	) {
		v.AddError(password.Field, m)
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&User{}).Where("username = ?", in.Username).Count(&count).Error; err != nil {
		return nil, database.FromDatabase(err, "user")
	}
	if count > 0 {
		v.AddError("username", msgUsernameTaken)
	}
	if err := v.Validate(); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, apperrors.Validation(err.Error()).WithDetail("fields", validation.FieldErrors{password.Field: {err.Error()}})
	}

	user := &User{
		Username:  in.Username,
		Email:     strings.ToLower(strings.TrimSpace(in.Email)),
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Password:  hash,
	}
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		if database.IsDuplicateError(err) {
			return nil, validation.New().Custom(false, "username", msgUsernameTaken).Validate()
		}
		return nil, database.FromDatabase(err, "user")
	}

	s.log.WithContext(ctx).Info("User registered", logger.Fields(logger.FieldUserID, user.ID.String()))
	return user, nil
}

// Login checks credentials and issues an access and refresh token.
func (s *Service) Login(ctx context.Context, username, pw string) (*TokenPair, error) {
	var user User
	err := s.db.WithContext(ctx).Scopes(database.Active).Where("username = ?", username).First(&user).Error
	if err != nil {
		if database.IsNotFoundError(err) {
			// Spend a hash anyway so timing does not reveal unknown usernames.
			_, _ = s.hasher.Hash(pw)
			return nil, apperrors.Unauthorized(msgNoActiveAccount)
		}
		return nil, database.FromDatabase(err, "user")
	}
	if err := s.hasher.Verify(pw, user.Password); err != nil {
		s.log.WithContext(ctx).Warn("Login failed", logger.Fields(logger.FieldUserID, user.ID.String()))
		return nil, apperrors.Unauthorized(msgNoActiveAccount)
	}

	pair, err := s.issuePair(ctx, &user)
	if err != nil {
		return nil, err
	}
	s.log.WithContext(ctx).Info("User logged in", logger.Fields(logger.FieldUserID, user.ID.String()))
	return pair, nil
}

func (s *Service) issuePair(ctx context.Context, user *User) (*TokenPair, error) {
	refreshClaims := jwt.NewClaims(user.ID.String())
	refresh, err := s.tokens.GenerateRefresh(refreshClaims)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	access, err := s.tokens.GenerateAccess(jwt.NewClaims(user.ID.String()))
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	now := s.now()
	err = s.db.Transaction(ctx, func(tx *gorm.DB) error {
		uid := user.ID
		outstanding := &OutstandingToken{
			UserID:    &uid,
			JTI:       refreshClaims.ID,
			Token:     refresh,
			ExpiresAt: refreshClaims.Expiry(),
		}
		if err := tx.Create(outstanding).Error; err != nil {
			return err
		}
		return tx.Model(user).Update("last_login", now).Error
	})
	if err != nil {
		return nil, database.FromDatabase(err, "token")
	}
	user.LastLogin = &now
	return &TokenPair{Access: access, Refresh: refresh}, nil
}

// Refresh returns a new access token for a valid, non-blacklisted refresh
// token.
func (s *Service) Refresh(ctx context.Context, refresh string) (*TokenPair, error) {
	claims, err := s.tokens.ParseType(refresh, jwt.TokenTypeRefresh)
	if err != nil {
		return nil, tokenError(err)
	}
	if err := s.checkBlacklist(ctx, claims.ID); err != nil {
		return nil, err
	}
	user, err := s.activeUser(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	access, err := s.tokens.GenerateAccess(jwt.NewClaims(user.ID.String()))
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return &TokenPair{Access: access}, nil
}

// Logout blacklists a refresh token. Blacklisting twice is not an error.
func (s *Service) Logout(ctx context.Context, refresh string) error {
	claims, err := s.tokens.ParseType(refresh, jwt.TokenTypeRefresh)
	if err != nil {
		return tokenError(err)
	}

	err = s.db.Transaction(ctx, func(tx *gorm.DB) error {
		var outstanding OutstandingToken
		err := tx.Where("jti = ?", claims.ID).First(&outstanding).Error
		if database.IsNotFoundError(err) {
			outstanding = OutstandingToken{
				JTI:       claims.ID,
				Token:     refresh,
				ExpiresAt: claims.Expiry(),
			}
			if uid, perr := uuid.Parse(claims.UserID); perr == nil {
				outstanding.UserID = &uid
			}
			err = tx.Create(&outstanding).Error
		}
		if err != nil {
			return err
		}
		return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&BlacklistedToken{
			TokenID:       outstanding.ID,
			BlacklistedAt: s.now(),
		}).Error
	})
	if err != nil {
		return database.FromDatabase(err, "token")
	}

	s.log.WithContext(ctx).Info("Refresh token blacklisted", logger.Fields(logger.FieldUserID, claims.UserID))
	return nil
}

// Authenticate validates an access token and returns its active user.
func (s *Service) Authenticate(ctx context.Context, access string) (*User, error) {
	claims, err := s.tokens.ParseType(access, jwt.TokenTypeAccess)
	if err != nil {
		return nil, tokenError(err)
	}
	return s.activeUser(ctx, claims.UserID)
}

// Me returns the user with id.
func (s *Service) Me(ctx context.Context, id uuid.UUID) (*User, error) {
	var user User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, database.FromDatabase(err, "user")
	}
	return &user, nil
}

// FlushExpired deletes outstanding tokens past their expiry together with
// their blacklist entries.
func (s *Service) FlushExpired(ctx context.Context) (int64, error) {
	var removed int64
	err := s.db.Transaction(ctx, func(tx *gorm.DB) error {
		expired := tx.Model(&OutstandingToken{}).Select("id").Where("expires_at <= ?", s.now())
		if err := tx.Where("token_id IN (?)", expired).Delete(&BlacklistedToken{}).Error; err != nil {
			return err
		}
		res := tx.Where("expires_at <= ?", s.now()).Delete(&OutstandingToken{})
		removed = res.RowsAffected
		return res.Error
	})
	if err != nil {
		return 0, database.FromDatabase(err, "token")
	}
	return removed, nil
}

func (s *Service) checkBlacklist(ctx context.Context, jti string) error {
	var count int64
	err := s.db.WithContext(ctx).Model(&BlacklistedToken{}).
		Joins("JOIN outstanding_tokens ON outstanding_tokens.id = blacklisted_tokens.token_id").
		Where("outstanding_tokens.jti = ?", jti).
		Count(&count).Error
	if err != nil {
		return database.FromDatabase(err, "token")
	}
	if count > 0 {
		return apperrors.TokenBlacklisted()
	}
	return nil
}

func (s *Service) activeUser(ctx context.Context, rawID string) (*User, error) {
	id, err := uuid.Parse(rawID)
	if err != nil {
		return nil, apperrors.InvalidToken()
	}
	var user User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		if database.IsNotFoundError(err) {
			return nil, apperrors.Unauthorized(msgUserNotFound)
		}
		return nil, database.FromDatabase(err, "user")
	}
	if !user.GetIsActive() {
		return nil, apperrors.Unauthorized(msgUserInactive)
	}
	return &user, nil
}

// tokenError maps a parse failure to the API error. A token of the wrong
// type is reported like a forged one.
func tokenError(err error) *apperrors.AppError {
	if jwt.IsExpired(err) {
		return apperrors.TokenExpired().WithCause(err)
	}
	return apperrors.InvalidToken().WithCause(err)
}
