// Package config handles YAML configuration loading with environment variable substitution.
//
// Configuration files support ${VAR} syntax for environment variable interpolation,
// so API keys and database passwords can stay out of the file:
//
//	provider:
//	  name: polygon
//	  api_key: ${POLYGON_API_KEY}
package config
