// assets/embed.go
//
// Files compiled into the binaries:
//   - answers.txt / allowed.txt: default word lists (one lowercase word per line).
//   - migrations/*.sql:          SQLite schema, applied in lexical order by the server.
package assets

import (
	"embed"
	"io"
	"io/fs"
)

//go:embed answers.txt allowed.txt
var words embed.FS

//go:embed migrations/*.sql
var migrations embed.FS

// Answers opens the embedded solution pool.
func Answers() (io.ReadCloser, error) { return words.Open("answers.txt") }

// Allowed opens the embedded allowed-guess list.
func Allowed() (io.ReadCloser, error) { return words.Open("allowed.txt") }

// Migrations returns the embedded migrations rooted at the migrations directory.
func Migrations() fs.FS {
	sub, err := fs.Sub(migrations, "migrations")
	if err != nil {
		panic(err)
	}
	return sub
}
