package database

import "database/sql"

// Repository groups the per-entity repositories over one connection pool.
type Repository struct {
	Boards   *BoardRepo
	Columns  *ColumnRepo
	Cards    *CardRepo
	Comments *CommentRepo
}

// NewRepository creates a new Repository instance wrapping the given database connection.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		Boards:   NewBoardRepo(db),
		Columns:  NewColumnRepo(db),
		Cards:    NewCardRepo(db),
		Comments: NewCommentRepo(db),
	}
}
