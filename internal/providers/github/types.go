package github

import "time"

// Repository is one entry of the repositories endpoint. Contributed
// repositories are reconstructed from push events and carry no
// description, language or counts.
type Repository struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	FullName      string    `json:"full_name"`
	Description   *string   `json:"description"`
	Language      *string   `json:"language"`
	Stars         int       `json:"stars"`
	Forks         int       `json:"forks"`
	Watchers      int       `json:"watchers"`
	UpdatedAt     time.Time `json:"updated_at"`
	URL           string    `json:"url"`
	IsContributed bool      `json:"is_contributed"`
}

// apiRepo is the subset of the GitHub repository payload we read.
type apiRepo struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	FullName    string    `json:"full_name"`
	Description *string   `json:"description"`
	Language    *string   `json:"language"`
	Stargazers  int       `json:"stargazers_count"`
	Forks       int       `json:"forks_count"`
	Watchers    int       `json:"watchers_count"`
	UpdatedAt   time.Time `json:"updated_at"`
	HTMLURL     string    `json:"html_url"`
}

type apiEvent struct {
	Type      string    `json:"type"`
	CreatedAt time.Time `json:"created_at"`
	Repo      *struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	} `json:"repo"`
}

func (r apiRepo) repository() Repository {
	return Repository{
		ID:          r.ID,
		Name:        r.Name,
		FullName:    r.FullName,
		Description: r.Description,
		Language:    r.Language,
		Stars:       r.Stargazers,
		Forks:       r.Forks,
		Watchers:    r.Watchers,
		UpdatedAt:   r.UpdatedAt,
		URL:         r.HTMLURL,
	}
}
