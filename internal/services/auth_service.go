package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"

	"github.com/Adarsh-MG101/VerifyCert2/internal/config"
	"github.com/Adarsh-MG101/VerifyCert2/internal/models"
)

const tokenLifetime = 24 * time.Hour

// Claims is the JWT payload issued at login.
type Claims struct {
	UserID         uint   `json:"user_id"`
	Role           string `json:"role"`
	OrganizationID uint   `json:"organization_id"`
	jwt.RegisteredClaims
}

// AuthService handles registration, login and token validation.
type AuthService struct {
	db  *gorm.DB
	cfg config.Config
}

func NewAuthService(db *gorm.DB, cfg config.Config) *AuthService {
	return &AuthService{db: db, cfg: cfg}
}

// Register creates a user inside the named organization, creating the
// organization on first use. The first user of a new organization becomes its
// admin.
func (s *AuthService) Register(name, email, password, organization string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, Validationf("email and password are required")
	}
	organization = strings.TrimSpace(organization)
	if organization == "" {
		return nil, Validationf("organization name is required")
	}

	var existing models.User
	if err := s.db.Where("email = ?", email).First(&existing).Error; err == nil {
		return nil, Validationf("an account with email %s already exists", email)
	}

	var user models.User
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var org models.Organization
		created := false
		if err := tx.Where("name = ?", organization).First(&org).Error; err != nil {
			if err != gorm.ErrRecordNotFound {
				return err
			}
			org = models.Organization{Name: organization}
			if err := tx.Create(&org).Error; err != nil {
				return fmt.Errorf("create organization: %w", err)
			}
			created = true
		}

		user = models.User{
			Name:           name,
			Email:          email,
			Role:           models.RoleMember,
			OrganizationID: &org.ID,
		}
		if created {
			user.Role = models.RoleAdmin
		}
		if err := user.SetPassword(password); err != nil {
			return fmt.Errorf("hash password: %w", err)
		}
		return tx.Create(&user).Error
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Login verifies credentials and returns a signed token plus the user.
func (s *AuthService) Login(email, password string) (string, *models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var user models.User
	if err := s.db.Where("email = ?", email).First(&user).Error; err != nil {
		return "", nil, Validationf("invalid email or password")
	}
	if !user.CheckPassword(password) {
		return "", nil, Validationf("invalid email or password")
	}

	now := time.Now()
	user.LastLogin = &now
	s.db.Model(&user).Update("last_login", now)

	var orgID uint
	if user.OrganizationID != nil {
		orgID = *user.OrganizationID
	}
	claims := Claims{
		UserID:         user.ID,
		Role:           user.Role,
		OrganizationID: orgID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprintf("%d", user.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenLifetime)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", nil, fmt.Errorf("sign token: %w", err)
	}
	return token, &user, nil
}

// ParseToken validates a token string and returns its claims.
func (s *AuthService) ParseToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}

// GetUserByID loads a user by primary key.
func (s *AuthService) GetUserByID(id uint) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}
