package repositories

import (
	"simpleboard/app/models"
)

const (
	postColumns = `id, name, title, password, content, created_at, updated_at`

	insertPostSQL = `INSERT INTO board (name, title, password, content, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?) RETURNING id`

	updatePostSQL = `UPDATE board
		SET name = ?, title = ?, password = ?, content = ?, created_at = ?, updated_at = ?
		WHERE id = ?`

	selectPostByIDSQL = `SELECT ` + postColumns + ` FROM board WHERE id = ?`

	countPostsSQL = `SELECT COUNT(*) FROM board`

	deletePostSQL = `DELETE FROM board WHERE id = ?`
)

// orderClause renders a normalized sort. Field names are whitelisted by
// PageRequest.Normalize; ties on non-id fields break by id.
func orderClause(s models.Sort) string {
	dir := "ASC"
	if s.Desc {
		dir = "DESC"
	}
	clause := s.Field + " " + dir
	if s.Field != "id" {
		clause += ", id " + dir
	}
	return clause
}

// normalizeTimes puts scanned timestamps in UTC; drivers differ in the
// location they attach.
func normalizeTimes(p *models.Post) {
	p.CreatedAt = p.CreatedAt.UTC()
	p.UpdatedAt = p.UpdatedAt.UTC()
}
