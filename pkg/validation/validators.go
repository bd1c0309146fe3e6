package validation

import (
	"fmt"
	"regexp"
)

// MinPasswordLength is the minimum accepted password length.
const MinPasswordLength = 6

var (
	emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	namePattern  = regexp.MustCompile(`^[a-zA-Z0-9 .\-]+$`)
)

// ValidationError carries a human-readable message describing the first
// violated rule. Handlers translate it into a 400 response.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// Registration is the normalized, validated registration input.
type Registration struct {
	Email    string
	Username string
	Password string
	Secret   string
}

// ValidateRegistration checks registration input. Rules fire in a fixed
// order, first violation wins: presence of all fields, email format,
// username charset, password length, secret word presence.
func ValidateRegistration(email, username, password, secret string) (Registration, *ValidationError) {
	reg := Registration{
		Email:    NormalizeEmail(email),
		Username: NormalizeName(username),
		Password: password,
		Secret:   secret,
	}
	if reg.Email == "" || reg.Username == "" || reg.Password == "" {
		return Registration{}, invalid("Kindly provide all details")
	}
	if !emailPattern.MatchString(reg.Email) {
		return Registration{}, invalid("%s is not a valid email", reg.Email)
	}
	if !namePattern.MatchString(reg.Username) {
		return Registration{}, invalid("%s is not a valid username", reg.Username)
	}
	if len(reg.Password) < MinPasswordLength {
		return Registration{}, invalid("Password should be more than six characters")
	}
	if reg.Secret == "" {
		return Registration{}, invalid("Kindly provide a secret word")
	}
	return reg, nil
}

// Login is the normalized, validated login input.
type Login struct {
	Email    string
	Password string
}

// ValidateLogin requires a non-empty email and password. No format check
// beyond presence; wrong shapes just fail the credential lookup.
func ValidateLogin(email, password string) (Login, *ValidationError) {
	l := Login{Email: NormalizeEmail(email), Password: password}
	if l.Email == "" || l.Password == "" {
		return Login{}, invalid("Kindly provide email and password")
	}
	return l, nil
}

// PasswordReset is the normalized, validated password-reset input.
type PasswordReset struct {
	Email       string
	NewPassword string
	Secret      string
}

// ValidatePasswordReset requires email, a new password of acceptable length,
// and the secret word. Whether the secret matches is checked against the
// store by the caller.
func ValidatePasswordReset(email, newPassword, secret string) (PasswordReset, *ValidationError) {
	pr := PasswordReset{
		Email:       NormalizeEmail(email),
		NewPassword: CollapseWhitespace(newPassword),
		Secret:      secret,
	}
	if pr.NewPassword == "" {
		return PasswordReset{}, invalid("Kindly provide a reset password")
	}
	if pr.Email == "" {
		return PasswordReset{}, invalid("Kindly provide a user email")
	}
	if pr.Secret == "" {
		return PasswordReset{}, invalid("Kindly provide a secret word")
	}
	if len(pr.NewPassword) < MinPasswordLength {
		return PasswordReset{}, invalid("Password should be more than six characters")
	}
	return pr, nil
}

// ValidateCategoryName normalizes and validates a category name, returning
// the title-cased form that gets stored and compared.
func ValidateCategoryName(name string) (string, *ValidationError) {
	name = NormalizeName(name)
	if name == "" {
		return "", invalid("Category name not provided")
	}
	if !namePattern.MatchString(name) {
		return "", invalid("Category name is not valid")
	}
	return name, nil
}

// RecipeInput is the normalized, validated recipe payload.
type RecipeInput struct {
	Name        string
	Ingredients string
	Methods     string
}

// ValidateRecipe normalizes and validates a recipe payload. The name is
// title-cased and pattern-checked; ingredients and methods only need to be
// non-empty after whitespace collapsing.
func ValidateRecipe(name, ingredients, methods string) (RecipeInput, *ValidationError) {
	in := RecipeInput{
		Name:        NormalizeName(name),
		Ingredients: CollapseWhitespace(ingredients),
		Methods:     CollapseWhitespace(methods),
	}
	if in.Name == "" {
		return RecipeInput{}, invalid("Recipe name not provided")
	}
	if in.Ingredients == "" {
		return RecipeInput{}, invalid("Recipe ingredients not provided")
	}
	if in.Methods == "" {
		return RecipeInput{}, invalid("Recipe preparation methods not provided")
	}
	if !namePattern.MatchString(in.Name) {
		return RecipeInput{}, invalid("Recipe name is not valid")
	}
	return in, nil
}
