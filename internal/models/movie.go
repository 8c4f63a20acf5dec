package models

import "encoding/json"

// Category is one of the fixed entity types used to route graph lookups.
type Category string

const (
	CategoryDirector Category = "Director"
	CategoryActor    Category = "Actor"
	CategoryGenre    Category = "Genre"
	CategoryKeyword  Category = "Keyword"
	CategoryMovie    Category = "Movie"
)

// EntityMatch is a single (category, name) pair produced by the classifier.
type EntityMatch struct {
	Category Category `json:"category"`
	Name     string   `json:"name"`
}

// MovieRecord is one tabular row returned by a graph lookup. Movie-similarity
// queries populate a reduced field set, hence the omitempty tags.
type MovieRecord struct {
	ID        int64   `json:"id"`
	Title     string  `json:"title"`
	Overview  string  `json:"overview"`
	Genres    string  `json:"genres,omitempty"`
	Actors    string  `json:"actors,omitempty"`
	Director  string  `json:"director,omitempty"`
	Rating    float64 `json:"rating"`
	ImagePath string  `json:"image_path,omitempty"`
}

// CategoryMatch pairs a classified entity with its graph lookup results.
type CategoryMatch struct {
	Category Category      `json:"category"`
	Name     string        `json:"name"`
	Results  []MovieRecord `json:"results"`
}

// Recommendation is one structured movie suggestion from the synthesis stage.
// The JSON keys mirror the shape the synthesis contract prescribes.
type Recommendation struct {
	Title    string   `json:"Title"`
	Director string   `json:"Director"`
	StarCast []string `json:"Star Cast"`
	Genre    string   `json:"Genre"`
	Overview string   `json:"Overview"`
	Reason   string   `json:"Reason"`
	ImageURL string   `json:"Image URL"`
}

// ErrorPayload reports a recoverable stage failure inside an otherwise
// successful response.
type ErrorPayload struct {
	Error string `json:"error"`
}

// ProfileSentinel is returned by the profile stage when history is too thin.
const ProfileSentinel = "Not enough data"

// MergedContext is the synthesis input: category matches in classifier order
// with the profile summary appended as the final element.
type MergedContext struct {
	Categories []CategoryMatch
	Profile    string
}

// MarshalJSON renders the context as a single ordered array, profile last.
func (c MergedContext) MarshalJSON() ([]byte, error) {
	elems := make([]interface{}, 0, len(c.Categories)+1)
	for _, cat := range c.Categories {
		elems = append(elems, cat)
	}
	elems = append(elems, c.Profile)
	return json.Marshal(elems)
}

// Response modes emitted by the query router.
const (
	ModeCategory = "category"
	ModeEmotion  = "emotion"
)

// AgentResponse is the payload returned to the caller for a processed query.
// Recommendations holds either []Recommendation or an *ErrorPayload.
type AgentResponse struct {
	Mode            string          `json:"mode"`
	Categories      []CategoryMatch `json:"categories,omitempty"`
	Profile         string          `json:"profile,omitempty"`
	Recommendations interface{}     `json:"recommendations,omitempty"`
	EmotionResponse string          `json:"emotion_response,omitempty"`
}
