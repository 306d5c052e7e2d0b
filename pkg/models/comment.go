package models

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf16"

	"github.com/gofrs/uuid"
)

// MaxFieldLen is the column limit for comment content and author, counted in UTF-16 code units.
const MaxFieldLen = 4096

var (
	ErrPostIDRequired  = fmt.Errorf("post id is required")
	ErrContentRequired = fmt.Errorf("comment content is required")
	ErrContentTooLong  = fmt.Errorf("comment content exceeds %d characters", MaxFieldLen)
	ErrAuthorRequired  = fmt.Errorf("comment author is required")
	ErrAuthorTooLong   = fmt.Errorf("comment author exceeds %d characters", MaxFieldLen)

	ErrInvalidCharacter = fmt.Errorf("comment contains a NUL character")
)

// NewComment builds a comment for the given post and checks the field constraints the
// storage layer would otherwise enforce. ID is left for the store to assign.
func NewComment(postID uuid.UUID, content, author string, created time.Time) (Comment, error) {
	if postID == uuid.Nil {
		return Comment{}, ErrPostIDRequired
	}

	switch n := codeUnits(content); {
	case n == 0:
		return Comment{}, ErrContentRequired
	case n > MaxFieldLen:
		return Comment{}, ErrContentTooLong
	}

	switch n := codeUnits(author); {
	case n == 0:
		return Comment{}, ErrAuthorRequired
	case n > MaxFieldLen:
		return Comment{}, ErrAuthorTooLong
	}

	// text columns in postgres cannot hold 0x00
	if strings.ContainsRune(content, 0) || strings.ContainsRune(author, 0) {
		return Comment{}, ErrInvalidCharacter
	}

	return Comment{
		PostID:       postID,
		Content:      content,
		Author:       author,
		CreationDate: created,
	}, nil
}

// codeUnits returns the length of s in UTF-16 code units.
func codeUnits(s string) int {
	n := 0
	// range yields U+FFFD for invalid UTF-8, so RuneLen is always 1 or 2 here.
	for _, r := range s {
		n += utf16.RuneLen(r)
	}
	return n
}
