package domain

import (
	"crypto/rand"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Name is the two-part display name stored on every user. Profile updates
// replace it wholesale; the two fields are never merged independently.
type Name struct {
	First string `json:"first"`
	Last  string `json:"last"`
}

// User is the canonical account record. The JSON tags double as the on-disk
// document shape and mirror the fields the web client reads, which is why ID
// serializes as "_id". PasswordHash is persisted but must never reach a
// client; handlers translate to a sanitized payload instead of encoding this
// struct directly.
type User struct {
	ID              string    `json:"_id"`
	GUID            string    `json:"guid"`
	Email           string    `json:"email"`
	PasswordHash    string    `json:"password,omitempty"`
	Name            Name      `json:"name"`
	IsActive        bool      `json:"isActive"`
	Company         string    `json:"company"`
	Phone           string    `json:"phone"`
	Address         string    `json:"address"`
	Age             int       `json:"age"`
	EyeColor        string    `json:"eyeColor"`
	Balance         string    `json:"balance"`
	Picture         string    `json:"picture"`
	PicturePublicID string    `json:"picturePublicId"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// Patch is a partial set of mutable profile fields. Nil fields are left
// untouched; set fields overwrite the current value at the top level.
type Patch struct {
	Name            *Name   `json:"name,omitempty"`
	IsActive        *bool   `json:"isActive,omitempty"`
	Company         *string `json:"company,omitempty"`
	Phone           *string `json:"phone,omitempty"`
	Address         *string `json:"address,omitempty"`
	Age             *int    `json:"age,omitempty"`
	EyeColor        *string `json:"eyeColor,omitempty"`
	Balance         *string `json:"balance,omitempty"`
	Picture         *string `json:"picture,omitempty"`
	PicturePublicID *string `json:"picturePublicId,omitempty"`
}

// Apply merges the patch over u and refreshes UpdatedAt.
func (p Patch) Apply(u *User) {
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.IsActive != nil {
		u.IsActive = *p.IsActive
	}
	if p.Company != nil {
		u.Company = *p.Company
	}
	if p.Phone != nil {
		u.Phone = *p.Phone
	}
	if p.Address != nil {
		u.Address = *p.Address
	}
	if p.Age != nil {
		u.Age = *p.Age
	}
	if p.EyeColor != nil {
		u.EyeColor = *p.EyeColor
	}
	if p.Balance != nil {
		u.Balance = *p.Balance
	}
	if p.Picture != nil {
		u.Picture = *p.Picture
	}
	if p.PicturePublicID != nil {
		u.PicturePublicID = *p.PicturePublicID
	}
	u.UpdatedAt = time.Now().UTC()
}

// Creation-time defaults for omitted profile fields.
const (
	DefaultBalance   = "$1,000.00"
	DefaultPicture   = "http://placehold.it/32x32"
	DefaultAge       = 25
	DefaultEyeColor  = "brown"
	DefaultFirstName = "User"
	DefaultLastName  = "Anonymous"
	DefaultCompany   = "Freelance"
	DefaultPhone     = "+1 (000) 000-0000"
	DefaultAddress   = "123 Main Street, Anytown, USA"
)

// ApplyDefaults fills every empty optional field with its default value.
func (u *User) ApplyDefaults() {
	if u.Balance == "" {
		u.Balance = DefaultBalance
	}
	if u.Picture == "" {
		u.Picture = DefaultPicture
	}
	if u.Age == 0 {
		u.Age = DefaultAge
	}
	if u.EyeColor == "" {
		u.EyeColor = DefaultEyeColor
	}
	if u.Name.First == "" {
		u.Name.First = DefaultFirstName
	}
	if u.Name.Last == "" {
		u.Name.Last = DefaultLastName
	}
	if u.Company == "" {
		u.Company = DefaultCompany
	}
	if u.Phone == "" {
		u.Phone = DefaultPhone
	}
	if u.Address == "" {
		u.Address = DefaultAddress
	}
}

// SplitName turns a free-form "First Last" string into a Name. Anything past
// the second word is dropped.
func SplitName(s string) Name {
	parts := strings.Fields(s)
	var n Name
	if len(parts) > 0 {
		n.First = parts[0]
	}
	if len(parts) > 1 {
		n.Last = parts[1]
	}
	return n
}

const base36 = "0123456789abcdefghijklmnopqrstuvwxyz"

// NewID returns a short unique token: the current unix milliseconds in
// base36 followed by five random base36 characters.
func NewID() (string, error) {
	var b strings.Builder
	b.WriteString(strconv.FormatInt(time.Now().UnixMilli(), 36))
	for range 5 {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(base36))))
		if err != nil {
			return "", err
		}
		b.WriteByte(base36[n.Int64()])
	}
	return b.String(), nil
}

// NewGUID returns a random identifier in uuid-v4 textual form. It is
// cosmetic: ID, not GUID, is the lookup key everywhere.
func NewGUID() string {
	return uuid.NewString()
}
