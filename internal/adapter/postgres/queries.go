package postgres

const queryListPosts = `
	SELECT p.id, p.title, p.body, p.created, p.author_id, u.username
	FROM post p JOIN users u ON p.author_id = u.id
	ORDER BY p.created DESC, p.id DESC`

const queryGetPost = `
	SELECT p.id, p.title, p.body, p.created, p.author_id, u.username
	FROM post p JOIN users u ON p.author_id = u.id
	WHERE p.id = $1`

const queryCreatePost = `INSERT INTO post (title, body, author_id) VALUES ($1, $2, $3) RETURNING id`

const queryUpdatePost = `UPDATE post SET title = $1, body = $2 WHERE id = $3`

const queryDeletePost = `DELETE FROM post WHERE id = $1`

const queryCreateUser = `INSERT INTO users (username, password) VALUES ($1, $2) RETURNING id`

const queryUserByUsername = `SELECT id, username, password FROM users WHERE username = $1`

const queryUserByID = `SELECT id, username, password FROM users WHERE id = $1`
