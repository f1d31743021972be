package model

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
)

type Role string

const (
	RoleReader Role = "reader"
	RoleAdmin  Role = "admin"
)

type ReservationStatus string

const (
	StatusActive    ReservationStatus = "active"
	StatusCompleted ReservationStatus = "completed"
	StatusCancelled ReservationStatus = "cancelled"
)

// Terminal reports whether the status is a final one.
func (s ReservationStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

func (s ReservationStatus) Valid() bool {
	return s == StatusActive || s == StatusCompleted || s == StatusCancelled
}

type BookStatus string

const (
	BookAvailable BookStatus = "available"
	BookReserved  BookStatus = "reserved"
)

// Date is a date-only value (JSON "2006-01-02").
type Date struct {
	time.Time
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.Format(time.DateOnly))
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		d.Time = time.Time{}
		return nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return errors.Wrap(err, "date must be YYYY-MM-DD")
	}
	d.Time = t
	return nil
}

func (d Date) Value() (driver.Value, error) {
	if d.IsZero() {
		return nil, nil
	}
	return d.Time, nil
}

func (d *Date) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		d.Time = time.Time{}
	case time.Time:
		d.Time = v
	case string:
		t, err := time.Parse(time.DateOnly, v)
		if err != nil {
			return err
		}
		d.Time = t
	default:
		return errors.Errorf("cannot scan %T into Date", src)
	}
	return nil
}

type User struct {
	ID               int       `json:"id" db:"id"`
	Email            string    `json:"email" db:"email"`
	PasswordHash     string    `json:"-" db:"password_hash"`
	FirstName        string    `json:"first_name" db:"first_name"`
	LastName         string    `json:"last_name" db:"last_name"`
	Role             Role      `json:"role" db:"role"`
	MembershipStatus string    `json:"membership_status" db:"membership_status"`
	JoinDate         Date      `json:"join_date" db:"join_date"`
	CreatedAt        time.Time `json:"-" db:"created_at"`
}

func (u User) IsAdmin() bool { return u.Role == RoleAdmin }

type Author struct {
	ID        int       `json:"id" db:"id"`
	FirstName string    `json:"first_name" db:"first_name"`
	LastName  string    `json:"last_name" db:"last_name"`
	Biography *string   `json:"biography" db:"biography"`
	BirthDate *Date     `json:"birth_date" db:"birth_date"`
	CreatedAt time.Time `json:"-" db:"created_at"`
}

type Genre struct {
	ID          int       `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description *string   `json:"description" db:"description"`
	CreatedAt   time.Time `json:"-" db:"created_at"`
}

type Book struct {
	ID              int       `json:"id" db:"id"`
	Title           string    `json:"title" db:"title"`
	Description     *string   `json:"description" db:"description"`
	PublicationYear *int      `json:"publication_year" db:"publication_year"`
	ISBN            *string   `json:"isbn" db:"isbn"`
	Metadata        *string   `json:"-" db:"file_stub_metadata"`
	TotalCopies     int       `json:"total_copies" db:"total_copies"`
	AvailableCopies int       `json:"available_copies" db:"available_copies"`
	CreatedAt       time.Time `json:"-" db:"created_at"`

	Authors []Author `json:"authors" db:"-"`
	Genres  []Genre  `json:"genres" db:"-"`
}

// Status is derived from the counter, never stored.
func (b Book) Status() BookStatus {
	if b.AvailableCopies > 0 {
		return BookAvailable
	}
	return BookReserved
}

func (b Book) MarshalJSON() ([]byte, error) {
	type alias Book
	var meta json.RawMessage
	if b.Metadata != nil && json.Valid([]byte(*b.Metadata)) {
		meta = json.RawMessage(*b.Metadata)
	}
	return json.Marshal(struct {
		alias
		Status   BookStatus      `json:"status"`
		Metadata json.RawMessage `json:"file_stub_metadata"`
	}{
		alias:    alias(b),
		Status:   b.Status(),
		Metadata: meta,
	})
}

type Reservation struct {
	ID              int               `json:"id" db:"id"`
	BookID          int               `json:"book_id" db:"book_id"`
	UserID          int               `json:"user_id" db:"user_id"`
	ReservationDate time.Time         `json:"reservation_date" db:"reservation_date"`
	ExpiryDate      time.Time         `json:"expiry_date" db:"expiry_date"`
	ReturnDate      *time.Time        `json:"return_date" db:"return_date"`
	Status          ReservationStatus `json:"status" db:"status"`
	CreatedAt       time.Time         `json:"-" db:"created_at"`

	Book *Book `json:"book,omitempty" db:"-"`
	User *User `json:"user,omitempty" db:"-"`
}

type BookList struct {
	Books       []Book `json:"books"`
	Total       int    `json:"total"`
	Pages       int    `json:"pages"`
	CurrentPage int    `json:"current_page"`
}

type SearchResult struct {
	Books []Book `json:"books"`
	Total int    `json:"total"`
}

type Counts struct {
	Books        int `json:"books"`
	Authors      int `json:"authors"`
	Genres       int `json:"genres"`
	Users        int `json:"users"`
	Reservations int `json:"reservations"`
}

type CreateBookRequest struct {
	Title           string          `json:"title" validate:"required"`
	Description     *string         `json:"description"`
	PublicationYear *int            `json:"publication_year"`
	ISBN            *string         `json:"isbn"`
	Metadata        json.RawMessage `json:"file_stub_metadata"`
	TotalCopies     *int            `json:"total_copies" validate:"omitempty,gte=0"`
	AvailableCopies *int            `json:"available_copies" validate:"omitempty,gte=0"`
	AuthorIDs       []int           `json:"author_ids"`
	GenreIDs        []int           `json:"genre_ids"`
}

// UpdateBookRequest overwrites field by field; absent fields keep the stored value.
type UpdateBookRequest struct {
	Title           *string         `json:"title"`
	Description     *string         `json:"description"`
	PublicationYear *int            `json:"publication_year"`
	ISBN            *string         `json:"isbn"`
	Metadata        json.RawMessage `json:"file_stub_metadata"`
	TotalCopies     *int            `json:"total_copies" validate:"omitempty,gte=0"`
	AvailableCopies *int            `json:"available_copies" validate:"omitempty,gte=0"`
	AuthorIDs       *[]int          `json:"author_ids"`
	GenreIDs        *[]int          `json:"genre_ids"`
}

type CreateAuthorRequest struct {
	FirstName string  `json:"first_name" validate:"required"`
	LastName  string  `json:"last_name" validate:"required"`
	Biography *string `json:"biography"`
	BirthDate *Date   `json:"birth_date"`
}

type UpdateAuthorRequest struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Biography *string `json:"biography"`
	BirthDate *Date   `json:"birth_date"`
}

type CreateGenreRequest struct {
	Name        string  `json:"name" validate:"required"`
	Description *string `json:"description"`
}

type UpdateGenreRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

type RegisterRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=6"`
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
	Role      Role   `json:"role" validate:"omitempty,oneof=reader admin"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password"`
}

type CreateReservationRequest struct {
	BookID int `json:"book_id" validate:"required"`
	UserID int `json:"user_id" validate:"required"`
}
