package domain

import "time"

// User is a registered blog author.
type User struct {
	ID           int64  `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"-"`
}

// Post is a blog entry joined with its author's username.
type Post struct {
	ID       int64     `json:"id"`
	Title    string    `json:"title"`
	Body     string    `json:"body"`
	Created  time.Time `json:"created"`
	AuthorID int64     `json:"author_id"`
	Username string    `json:"username"`
}

// ValidatePost checks the user-supplied fields of a post.
func ValidatePost(title string) error {
	if title == "" {
		return ErrTitleRequired
	}
	return nil
}

// ValidateCredentials checks the registration/login form fields.
func ValidateCredentials(username, password string) error {
	if username == "" {
		return ErrUsernameRequired
	}
	if password == "" {
		return ErrPasswordRequired
	}
	return nil
}
