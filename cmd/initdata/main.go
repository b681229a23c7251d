package main

import (
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/go-resty/resty/v2"
)

// ----------------------------------------------------------------------------
// Config ---------------------------------------------------------------------
var (
	baseURL     = flag.String("url", env("API_BASE_URL", "http://localhost:8080"), "Server base URL")
	email       = flag.String("email", env("EMAIL", "demo@example.com"), "Owner e-mail")
	friendEmail = flag.String("friend", env("FRIEND_EMAIL", "friend@example.com"), "Collaborator e-mail")
	pass        = flag.String("pass", env("PASSWORD", "Password123"), "Password for both users")
	nNotes      = flag.Int("n", envInt("COUNT", 50), "How many notes to create")
	nBlocks     = flag.Int("blocks", envInt("BLOCKS", 8), "Blocks per note")
)

const cookieName = "token"

var blockTypes = []string{"TEXT", "TEXT", "TEXT", "CHECKLIST", "CODE", "IMAGE"}

func env(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil && i > 0 {
			return i
		}
	}
	return def
}

type apiError struct {
	Error string `json:"error"`
}

type noteResp struct {
	ID string `json:"id"`
}

// ----------------------------------------------------------------------------
// Main -----------------------------------------------------------------------
func main() {
	flag.Parse()
	gofakeit.Seed(time.Now().UnixNano())

	fmt.Printf("Init account %s (notes=%d, blocks=%d) on %s\n", *email, *nNotes, *nBlocks, *baseURL)

	owner := newClient()
	if err := ensureUser(owner, *email); err != nil {
		fatal(err)
	}
	friend := newClient()
	if err := ensureUser(friend, *friendEmail); err != nil {
		fatal(err)
	}

	if err := createNotes(owner, *nNotes, *nBlocks); err != nil {
		fatal(err)
	}

	fmt.Println("✔ done")
}

func newClient() *resty.Client {
	return resty.New().
		SetBaseURL(*baseURL).
		SetTimeout(10*time.Second).
		SetHeader("Content-Type", "application/json")
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "FATAL:", err)
	os.Exit(1)
}

// ----------------------------------------------------------------------------
// Step 1 – make sure the users exist -------------------------------------------
// The session cookie from the response is attached to every later request.
func ensureUser(c *resty.Client, addr string) error {
	payload := map[string]string{"email": addr, "password": *pass}

	// Try sign-up first …
	resp, err := c.R().SetBody(payload).SetError(&apiError{}).Post("/api/v1/auth/sign-up")
	if err == nil && resp.StatusCode() == http.StatusCreated {
		fmt.Printf("• signed-up %s\n", addr)
		return keepSession(c, resp)
	}

	// … otherwise fall back to sign-in.
	resp, err = c.R().SetBody(payload).SetError(&apiError{}).Post("/api/v1/auth/sign-in")
	if err != nil {
		return err
	}
	if resp.StatusCode() != http.StatusOK {
		return fmt.Errorf("sign-in %s failed (%d): %s", addr, resp.StatusCode(), resp.String())
	}
	fmt.Printf("• signed-in %s\n", addr)
	return keepSession(c, resp)
}

func keepSession(c *resty.Client, resp *resty.Response) error {
	for _, ck := range resp.Cookies() {
		if ck.Name == cookieName && ck.Value != "" {
			c.SetCookie(&http.Cookie{Name: cookieName, Value: ck.Value})
			return nil
		}
	}
	return errors.New("server did not set a session cookie")
}

// ----------------------------------------------------------------------------
// Step 2 – create notes with blocks, grants and public links -------------------
func createNotes(c *resty.Client, total, blocks int) error {
	for i := 1; i <= total; i++ {
		var note noteResp
		resp, err := c.R().
			SetBody(map[string]string{"title": gofakeit.Sentence(3)}).
			SetResult(&note).
			Post("/api/v1/notes")
		if err != nil {
			return err
		}
		if resp.StatusCode() != http.StatusCreated {
			return fmt.Errorf("create note %d failed (%d): %s", i, resp.StatusCode(), resp.String())
		}

		for b := 0; b < blocks; b++ {
			typ := blockTypes[gofakeit.Number(0, len(blockTypes)-1)]
			resp, err := c.R().
				SetBody(map[string]string{"type": typ, "content": blockContent(typ)}).
				Post("/api/v1/notes/" + note.ID + "/blocks")
			if err != nil {
				return err
			}
			if resp.StatusCode() != http.StatusCreated {
				return fmt.Errorf("create block on %s failed (%d): %s", note.ID, resp.StatusCode(), resp.String())
			}
		}

		if i%3 == 0 {
			perm := "view"
			if i%2 == 0 {
				perm = "edit"
			}
			resp, err := c.R().
				SetBody(map[string]string{"email": *friendEmail, "permission": perm}).
				Post("/api/v1/notes/" + note.ID + "/collaborators")
			if err != nil {
				return err
			}
			if resp.StatusCode() != http.StatusCreated {
				return fmt.Errorf("share %s failed (%d): %s", note.ID, resp.StatusCode(), resp.String())
			}
		}

		if i%5 == 0 {
			resp, err := c.R().
				SetBody(map[string]bool{"isPublic": true}).
				Patch("/api/v1/notes/" + note.ID + "/public")
			if err != nil {
				return err
			}
			if resp.StatusCode() != http.StatusOK {
				return fmt.Errorf("publish %s failed (%d): %s", note.ID, resp.StatusCode(), resp.String())
			}
		}

		if i%10 == 0 || i == total {
			fmt.Printf("  … %d/%d\n", i, total)
		}
	}
	return nil
}

func blockContent(typ string) string {
	switch typ {
	case "CHECKLIST":
		return fmt.Sprintf(`[{"text":%q,"done":%t},{"text":%q,"done":false}]`,
			gofakeit.HackerPhrase(), gofakeit.Bool(), gofakeit.HackerPhrase())
	case "CODE":
		return fmt.Sprintf("func %s() error {\n\treturn nil\n}", gofakeit.Verb())
	case "IMAGE":
		return gofakeit.URL()
	default:
		return gofakeit.Paragraph(1, 3, 20, " ")
	}
}
