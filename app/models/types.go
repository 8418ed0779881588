package models

import "time"

// Post represents one message-board entry, stored in the board table.
type Post struct {
	ID           int64     `db:"id" json:"id" form:"id"`
	Name         string    `db:"name" json:"name" form:"name" validate:"required,max=50"`
	Title        string    `db:"title" json:"title" form:"title" validate:"required,max=200"`
	Password     string    `db:"-" json:"-" form:"password" validate:"required,min=4,maxbytes=72"`
	PasswordHash string    `db:"password" json:"-" form:"-"`
	Content      string    `db:"content" json:"content" form:"content" validate:"required"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt" form:"-"`
	UpdatedAt    time.Time `db:"updated_at" json:"updatedAt" form:"-"`
}

// Sort names the column a listing is ordered by.
type Sort struct {
	Field string
	Desc  bool
}

// PageRequest asks for one 0-indexed page of a listing.
type PageRequest struct {
	Number int
	Size   int
	Sort   Sort
}

// Page is a bounded slice of a listing plus the metadata pagination controls need.
type Page[T any] struct {
	Items         []T   `json:"items"`
	Number        int   `json:"pageNumber"`
	Size          int   `json:"pageSize"`
	TotalElements int64 `json:"totalElements"`
	TotalPages    int   `json:"totalPages"`
}
