package graph

import "movierag/internal/models"

// maxResults caps every lookup; the templates below all carry LIMIT 10.
const maxResults = 10

// queryMap holds one fixed Cypher template per category. Entity categories
// use a case-insensitive substring match on the entity name and traverse the
// category's relationship type to related movies. The Movie template is a
// two-hop similarity lookup: resolve movies whose title contains the term,
// then find movies whose overview contains the first movie's overview as a
// substring. That containment heuristic is deliberately weak and is kept
// as-is for compatibility with the data set it was tuned against.
var queryMap = map[models.Category]string{
	models.CategoryActor: `MATCH (a:Actor)-[:ACTED_IN]->(m:Movie)
		WHERE toLower(a.name) CONTAINS toLower($param)
		RETURN m.movie_id AS id, m.title AS title, m.overview AS overview,
		       m.genres AS genres, m.actors AS actors, m.director AS director,
		       m.vote_average AS rating, m.image_path AS image_path
		LIMIT 10`,
	models.CategoryDirector: `MATCH (d:Director)-[:DIRECTED]->(m:Movie)
		WHERE toLower(d.name) CONTAINS toLower($param)
		RETURN m.movie_id AS id, m.title AS title, m.overview AS overview,
		       m.genres AS genres, m.actors AS actors, m.director AS director,
		       m.vote_average AS rating, m.image_path AS image_path
		LIMIT 10`,
	models.CategoryGenre: `MATCH (g:Genre)-[:HAS_GENRE]->(m:Movie)
		WHERE toLower(g.name) CONTAINS toLower($param)
		RETURN m.movie_id AS id, m.title AS title, m.overview AS overview,
		       m.genres AS genres, m.actors AS actors, m.director AS director,
		       m.vote_average AS rating, m.image_path AS image_path
		LIMIT 10`,
	models.CategoryKeyword: `MATCH (k:Keyword)-[:HAS_KEYWORD]->(m:Movie)
		WHERE toLower(k.name) CONTAINS toLower($param)
		RETURN m.movie_id AS id, m.title AS title, m.overview AS overview,
		       m.genres AS genres, m.actors AS actors, m.director AS director,
		       m.vote_average AS rating, m.image_path AS image_path
		LIMIT 10`,
	models.CategoryMovie: `MATCH (m:Movie)
		WHERE toLower(m.title) CONTAINS toLower($param)
		WITH m MATCH (similar:Movie)
		WHERE toLower(similar.overview) CONTAINS toLower(m.overview)
		RETURN similar.movie_id AS id, similar.title AS title,
		       similar.overview AS overview, similar.vote_average AS rating
		LIMIT 10`,
}

// HasTemplate reports whether a category has a registered query template.
// Pairs without a template are dropped before lookup.
func HasTemplate(category models.Category) bool {
	_, ok := queryMap[category]
	return ok
}
