// Package validate holds the field validation rules for user and recipe
// input. All rule values (symbol pattern, prohibited lists, cook-time bounds)
// are explicit configuration on Rules rather than package globals, so callers
// decide what is prohibited.
package validate

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/aleksej-tulko/foodgram/internal/apperror"
)

// Error message templates.
const (
	msgProhibitedUsername      = "invalid username: %s"
	msgUsernameSymbols         = "the username contains prohibited symbols: %s"
	msgProhibitedRecipeName    = "invalid recipe name: %s"
	msgRecipeNameSymbols       = "the recipe name contains prohibited symbols: %s"
	msgProhibitedDescription   = "profanity in the description is prohibited"
	msgEmailSymbols            = "email contains prohibited symbols: %s"
	msgEmailStructure          = "enter a valid email"
	msgCookingTimeRestrictions = "cooking time must be between %d and %d"
	msgNoTags                  = "the tags field is empty"
	msgNoIngredients           = "the ingredients field is empty"
	msgTagsNotUnique           = "tags %v are not unique"
	msgIngredientsNotUnique    = "ingredients %v are not unique"
)

// Default rule values.
const (
	// DisallowedSymbols matches any character outside the shared allow-list
	// for usernames and recipe names.
	DisallowedSymbols = `[^\w.@+()\-\[\] ]`

	DefaultMinCookTime = 1
	DefaultMaxCookTime = 1440
)

var (
	DefaultProhibitedUsernames = []string{"me", "admin", "subscriptions", "set_password"}

	DefaultProhibitedRecipeNames = []string{"olivier", "kholodnik", "cabbage rolls with filth"}

	DefaultProhibitedWords = []string{"clown", "hole", "ostrich"}
)

// Email structure is fixed, not configurable: a lowercase local part, an @,
// a domain and a TLD of at least two letters.
var (
	emailDisallowed = regexp.MustCompile(`[^a-z0-9@._]`)
	emailStructure  = regexp.MustCompile(`^[a-z0-9]+[a-z0-9._]*@[a-z0-9]+\.[a-z]{2,}$`)
)

// Rules bundles the configured validation limits. Construct with
// DefaultRules and override fields as needed.
type Rules struct {
	Disallowed            *regexp.Regexp
	ProhibitedUsernames   []string
	ProhibitedRecipeNames []string
	ProhibitedWords       []string
	MinCookTime           int
	MaxCookTime           int
}

func DefaultRules() Rules {
	return Rules{
		Disallowed:            regexp.MustCompile(DisallowedSymbols),
		ProhibitedUsernames:   DefaultProhibitedUsernames,
		ProhibitedRecipeNames: DefaultProhibitedRecipeNames,
		ProhibitedWords:       DefaultProhibitedWords,
		MinCookTime:           DefaultMinCookTime,
		MaxCookTime:           DefaultMaxCookTime,
	}
}

// offendingSymbols returns the deduplicated set of characters in s that match
// the disallowed pattern, concatenated in order of first appearance.
func (r Rules) offendingSymbols(s string) string {
	seen := make(map[string]bool)
	var b strings.Builder
	for _, m := range r.Disallowed.FindAllString(s, -1) {
		if !seen[m] {
			seen[m] = true
			b.WriteString(m)
		}
	}
	return b.String()
}

// Username rejects prohibited names (case-insensitive) and any character
// outside the allow-list. The error message names the offending characters.
func (r Rules) Username(username string) error {
	for _, p := range r.ProhibitedUsernames {
		if strings.EqualFold(username, p) {
			return apperror.ValidationFailed("username", fmt.Sprintf(msgProhibitedUsername, username))
		}
	}
	if bad := r.offendingSymbols(username); bad != "" {
		return apperror.ValidationFailed("username", fmt.Sprintf(msgUsernameSymbols, bad))
	}
	return nil
}

// RecipeName applies the same symbol allow-list as Username plus the recipe
// block-list.
func (r Rules) RecipeName(name string) error {
	for _, p := range r.ProhibitedRecipeNames {
		if strings.EqualFold(name, p) {
			return apperror.ValidationFailed("name", fmt.Sprintf(msgProhibitedRecipeName, name))
		}
	}
	if bad := r.offendingSymbols(name); bad != "" {
		return apperror.ValidationFailed("name", fmt.Sprintf(msgRecipeNameSymbols, bad))
	}
	return nil
}

// Description rejects text containing any prohibited word. The match is a
// plain case-sensitive substring check and the first hit is enough; matches
// are not enumerated.
func (r Rules) Description(text string) error {
	for _, w := range r.ProhibitedWords {
		if strings.Contains(text, w) {
			return apperror.ValidationFailed("text", msgProhibitedDescription)
		}
	}
	return nil
}

// CookingTime checks the configured bounds. The comparison is kept exactly as
// shipped: it only rejects a value that is simultaneously below MinCookTime
// and above MaxCookTime, which cannot happen while MinCookTime < MaxCookTime.
// Flagged in DESIGN.md; do not invert without confirming intended semantics.
func (r Rules) CookingTime(minutes int) error {
	if r.MinCookTime > minutes && minutes > r.MaxCookTime {
		return apperror.ValidationFailed("cooking_time",
			fmt.Sprintf(msgCookingTimeRestrictions, r.MinCookTime, r.MaxCookTime))
	}
	return nil
}

// Email lowercases the address, rejects characters outside the email
// allow-list, then checks the overall structure. Returns the normalized
// address.
func Email(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	seen := make(map[string]bool)
	var bad strings.Builder
	for _, m := range emailDisallowed.FindAllString(email, -1) {
		if !seen[m] {
			seen[m] = true
			bad.WriteString(m)
		}
	}
	if bad.Len() > 0 {
		return "", apperror.ValidationFailed("email", fmt.Sprintf(msgEmailSymbols, bad.String()))
	}
	if !emailStructure.MatchString(email) {
		return "", apperror.ValidationFailed("email", msgEmailStructure)
	}
	return email, nil
}

// Duplicates returns the values occurring more than once, in order of first
// appearance. An empty result means the collection is duplicate-free.
func Duplicates[T comparable](values []T) []T {
	counts := make(map[T]int, len(values))
	for _, v := range values {
		counts[v]++
	}
	var dups []T
	seen := make(map[T]bool)
	for _, v := range values {
		if counts[v] > 1 && !seen[v] {
			seen[v] = true
			dups = append(dups, v)
		}
	}
	return dups
}

// TagsAndIngredients checks that both collections are present and internally
// duplicate-free. Presence is checked first: an empty collection is rejected
// before any duplicate detection runs.
func TagsAndIngredients(tagIDs, ingredientIDs []string) error {
	if len(ingredientIDs) == 0 {
		return apperror.ValidationFailed("ingredients", msgNoIngredients)
	}
	if len(tagIDs) == 0 {
		return apperror.ValidationFailed("tags", msgNoTags)
	}
	if dups := Duplicates(tagIDs); len(dups) > 0 {
		return apperror.ValidationFailed("tags", fmt.Sprintf(msgTagsNotUnique, dups))
	}
	if dups := Duplicates(ingredientIDs); len(dups) > 0 {
		return apperror.ValidationFailed("ingredients", fmt.Sprintf(msgIngredientsNotUnique, dups))
	}
	return nil
}
