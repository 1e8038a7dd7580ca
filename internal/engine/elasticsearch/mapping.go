package elasticsearch

// DefaultIndexName is the default Elasticsearch index used for review documents.
const DefaultIndexName = "careerfair_reviews"

// buildIndexMapping returns the full JSON mapping for the reviews index,
// including an edge-ngram analyzer for as-you-type company matching.
func buildIndexMapping() string {
	return `{
  "settings": {
    "number_of_shards": 1,
    "number_of_replicas": 0,
    "analysis": {
      "analyzer": {
        "autocomplete_analyzer": {
          "type": "custom",
          "tokenizer": "autocomplete_tokenizer",
          "filter": ["lowercase"]
        },
        "autocomplete_search": {
          "type": "custom",
          "tokenizer": "standard",
          "filter": ["lowercase"]
        }
      },
      "tokenizer": {
        "autocomplete_tokenizer": {
          "type": "edge_ngram",
          "min_gram": 2,
          "max_gram": 20,
          "token_chars": ["letter", "digit"]
        }
      }
    }
  },
  "mappings": {
    "properties": {
      "id":           { "type": "keyword" },
      "company_name": { "type": "text", "fields": { "keyword": { "type": "keyword", "ignore_above": 256 }, "autocomplete": { "type": "text", "analyzer": "autocomplete_analyzer", "search_analyzer": "autocomplete_search" } } },
      "comment":      { "type": "text" },
      "rating":       { "type": "integer" },
      "major":        { "type": "text", "fields": { "keyword": { "type": "keyword" } } },
      "created_at":   { "type": "date" }
    }
  }
}`
}
