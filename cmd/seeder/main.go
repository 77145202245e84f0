package main

import (
	"bytes"
	"flag"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	// Global flags
	apiURL := "http://localhost:8080"
	if envURL := os.Getenv("API_URL"); envURL != "" {
		apiURL = envURL
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "seed":
		seedCmd(apiURL, args)
	case "list":
		listCmd(apiURL, args)
	case "wipe":
		wipeCmd(apiURL, args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`Catalog Seeder - Development tool for filling the movie catalog

USAGE:
  seeder <command> [options]

COMMANDS:
  seed      Sign in (or sign up) and create movies, optionally with posters
  list      Print one page of the catalog
  wipe      Delete every movie in the catalog
  help      Show this help message

ENVIRONMENT:
  API_URL   Backend API URL (default: http://localhost:8080)

EXAMPLES:
  # Create 25 movies so the catalog has three pages
  seeder seed --count=25

  # Create 5 movies with generated PNG posters
  seeder seed --count=5 --posters

  # Show the second page, 10 per page
  seeder list --page=2

  # Remove everything
  seeder wipe`)
}

var classics = []struct {
	title string
	year  int
}{
	{"Metropolis", 1927},
	{"Casablanca", 1942},
	{"Rashomon", 1950},
	{"Vertigo", 1958},
	{"Psycho", 1960},
	{"Jaws", 1975},
	{"Alien", 1979},
	{"Blade Runner", 1982},
	{"Heat", 1995},
	{"Spirited Away", 2001},
	{"Inception", 2010},
	{"Parasite", 2019},
}

func seedCmd(apiURL string, args []string) {
	fs := flag.NewFlagSet("seed", flag.ExitOnError)
	count := fs.Int("count", 12, "Number of movies to create")
	posters := fs.Bool("posters", false, "Attach a generated PNG poster to every movie")
	email := fs.String("email", "seeder@example.com", "Account used to create the movies")
	password := fs.String("password", "seeder-password", "Password for the account")
	fs.Parse(args)

	if *count < 1 || *count > 500 {
		fmt.Println("Error: --count must be between 1 and 500")
		os.Exit(1)
	}

	client := NewAPIClient(apiURL)
	token := mustSignIn(client, *email, *password)

	fmt.Printf("Creating %d movies:\n", *count)
	created := 0
	for i := 0; i < *count; i++ {
		c := classics[i%len(classics)]
		title := c.title
		if i >= len(classics) {
			title = fmt.Sprintf("%s (%d)", c.title, i/len(classics)+1)
		}

		var poster []byte
		if *posters {
			poster = posterPNG(i)
		}

		movie, err := client.CreateMovie(token, title, c.year, poster)
		if err != nil {
			fmt.Printf("  [%d/%d] FAILED: %v\n", i+1, *count, err)
			continue
		}
		created++
		fmt.Printf("  [%d/%d] %s (%d) %s\n", i+1, *count, movie.Title, movie.PublishYear, movie.ID)
	}

	fmt.Println()
	fmt.Printf("Done! %d of %d movies created.\n", created, *count)
}

func listCmd(apiURL string, args []string) {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	page := fs.Int("page", 1, "Page to show")
	limit := fs.Int("limit", 10, "Movies per page")
	fs.Parse(args)

	client := NewAPIClient(apiURL)
	result, err := client.ListMovies(*page, *limit)
	if err != nil {
		fmt.Printf("Failed to list movies: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Page %d of %d (%d movies total)\n\n", result.Meta.Page, result.Meta.TotalPages, result.Meta.TotalItems)
	for _, m := range result.Data {
		poster := m.Image
		if poster == "" {
			poster = "-"
		}
		fmt.Printf("  %s  %-30s %d  %s\n", m.ID, m.Title, m.PublishYear, poster)
	}
}

func wipeCmd(apiURL string, args []string) {
	fs := flag.NewFlagSet("wipe", flag.ExitOnError)
	email := fs.String("email", "seeder@example.com", "Account used to delete the movies")
	password := fs.String("password", "seeder-password", "Password for the account")
	fs.Parse(args)

	client := NewAPIClient(apiURL)
	token := mustSignIn(client, *email, *password)

	deleted := 0
	for {
		// Always read page 1; deletions shift the rest forward.
		result, err := client.ListMovies(1, 50)
		if err != nil {
			fmt.Printf("Failed to list movies: %v\n", err)
			os.Exit(1)
		}
		if len(result.Data) == 0 {
			break
		}
		for _, m := range result.Data {
			if err := client.DeleteMovie(token, m.ID); err != nil {
				fmt.Printf("Failed to delete %s: %v\n", m.ID, err)
				os.Exit(1)
			}
			deleted++
		}
	}

	fmt.Printf("Done! %d movies deleted.\n", deleted)
}

// mustSignIn signs in, creating the account on first use.
func mustSignIn(client *APIClient, email, password string) string {
	fmt.Print("Signing in... ")
	user, token, err := client.SignIn(email, password)
	if err != nil {
		user, token, err = client.SignUp(email, password)
	}
	if err != nil {
		fmt.Printf("FAILED\n  Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("OK (user: %s)\n\n", user.Email)
	return token
}

// posterPNG draws a flat poster whose color varies with i.
func posterPNG(i int) []byte {
	img := image.NewRGBA(image.Rect(0, 0, 60, 90))
	fill := color.RGBA{R: uint8(40 + i*37%200), G: uint8(60 + i*53%180), B: uint8(80 + i*71%160), A: 255}
	for y := 0; y < 90; y++ {
		for x := 0; x < 60; x++ {
			img.Set(x, y, fill)
		}
	}

	var buf bytes.Buffer
	png.Encode(&buf, img)
	return buf.Bytes()
}
