package mysql

const queryListPosts = `
	SELECT p.id, p.title, p.body, p.created, p.author_id, u.username
	FROM post p JOIN users u ON p.author_id = u.id
	ORDER BY p.created DESC, p.id DESC`

const queryGetPost = `
	SELECT p.id, p.title, p.body, p.created, p.author_id, u.username
	FROM post p JOIN users u ON p.author_id = u.id
	WHERE p.id = ?`

const queryCreatePost = `INSERT INTO post (title, body, author_id) VALUES (?, ?, ?)`

const queryUpdatePost = `UPDATE post SET title = ?, body = ? WHERE id = ?`

const queryDeletePost = `DELETE FROM post WHERE id = ?`

const queryCreateUser = `INSERT INTO users (username, password) VALUES (?, ?)`

const queryUserByUsername = `SELECT id, username, password FROM users WHERE username = ?`

const queryUserByID = `SELECT id, username, password FROM users WHERE id = ?`
