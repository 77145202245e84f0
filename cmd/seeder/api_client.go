package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const sessionCookieName = "movie_wallet_auth"

// APIClient handles HTTP communication with the backend
type APIClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewAPIClient creates a new API client
func NewAPIClient(baseURL string) *APIClient {
	return &APIClient{
		baseURL: baseURL + "/api",
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Response types matching backend

type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type userEnvelope struct {
	User *User `json:"user"`
}

type Movie struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	PublishYear int    `json:"publishYear"`
	Image       string `json:"image"`
	CreatedAt   string `json:"createdAt"`
}

type PageMeta struct {
	Page        int  `json:"page"`
	Limit       int  `json:"limit"`
	TotalItems  int  `json:"totalItems"`
	TotalPages  int  `json:"totalPages"`
	HasNextPage bool `json:"hasNextPage"`
}

type MoviePage struct {
	Data []Movie  `json:"data"`
	Meta PageMeta `json:"meta"`
}

// SignUp creates an account and returns the session token from the cookie.
func (c *APIClient) SignUp(email, password string) (*User, string, error) {
	return c.authenticate("/auth/signup", email, password)
}

// SignIn returns the session token for an existing account.
func (c *APIClient) SignIn(email, password string) (*User, string, error) {
	return c.authenticate("/auth/signin", email, password)
}

func (c *APIClient) authenticate(path, email, password string) (*User, string, error) {
	resp, err := c.postJSON(path, map[string]string{"email": email, "password": password}, "")
	if err != nil {
		return nil, "", fmt.Errorf("%s request failed: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", statusError(path, resp)
	}

	var result userEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, "", fmt.Errorf("failed to decode response: %w", err)
	}
	if result.User == nil {
		return nil, "", fmt.Errorf("%s returned no user", path)
	}

	for _, cookie := range resp.Cookies() {
		if cookie.Name == sessionCookieName {
			return result.User, cookie.Value, nil
		}
	}
	return nil, "", fmt.Errorf("%s did not set the session cookie", path)
}

// CreateMovie posts a movie. A non-nil poster is sent as a multipart upload.
func (c *APIClient) CreateMovie(token, title string, year int, poster []byte) (*Movie, error) {
	var (
		resp *http.Response
		err  error
	)
	if poster == nil {
		resp, err = c.postJSON("/movies", map[string]any{"title": title, "publishYear": year}, token)
	} else {
		resp, err = c.postPoster(title, year, poster, token)
	}
	if err != nil {
		return nil, fmt.Errorf("create movie request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return nil, statusError("create movie", resp)
	}

	var movie Movie
	if err := json.NewDecoder(resp.Body).Decode(&movie); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &movie, nil
}

// ListMovies fetches one page of the catalog.
func (c *APIClient) ListMovies(page, limit int) (*MoviePage, error) {
	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	query.Set("limit", strconv.Itoa(limit))

	resp, err := c.do(http.MethodGet, "/movies?"+query.Encode(), nil, "", "")
	if err != nil {
		return nil, fmt.Errorf("list movies request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError("list movies", resp)
	}

	var result MoviePage
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &result, nil
}

func (c *APIClient) DeleteMovie(token, id string) error {
	resp, err := c.do(http.MethodDelete, "/movies/"+url.PathEscape(id), nil, "", token)
	if err != nil {
		return fmt.Errorf("delete movie request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return statusError("delete movie", resp)
	}
	return nil
}

func (c *APIClient) postJSON(path string, body any, token string) (*http.Response, error) {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	return c.do(http.MethodPost, path, bytes.NewReader(jsonBody), "application/json", token)
}

func (c *APIClient) postPoster(title string, year int, poster []byte, token string) (*http.Response, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	mw.WriteField("title", title)
	mw.WriteField("publishYear", strconv.Itoa(year))

	part, err := mw.CreateFormFile("image", "poster.png")
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(poster); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	return c.do(http.MethodPost, "/movies", &buf, mw.FormDataContentType(), token)
}

func (c *APIClient) do(method, path string, body io.Reader, contentType, token string) (*http.Response, error) {
	req, err := http.NewRequest(method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	return c.httpClient.Do(req)
}

func statusError(action string, resp *http.Response) error {
	var body struct {
		Message string `json:"message"`
	}
	raw, _ := io.ReadAll(resp.Body)
	if json.Unmarshal(raw, &body) == nil && body.Message != "" {
		return fmt.Errorf("%s failed (status %d): %s", action, resp.StatusCode, body.Message)
	}
	return fmt.Errorf("%s failed (status %d): %s", action, resp.StatusCode, string(raw))
}
