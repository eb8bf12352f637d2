package docs

import "github.com/swaggo/swag"

const docTemplate = `{
  "swagger": "2.0",
  "info": {
    "title": "Service Desk Metrics API",
    "description": "Read-only metrics, case listings, conversation views, satisfaction summaries and periodic reports",
    "version": "1.0"
  },
  "basePath": "/",
  "paths": {
    "/api/metrics": {"get": {"tags": ["metrics"], "summary": "Dashboard metrics", "produces": ["application/json"]}},
    "/api/cases": {"get": {"tags": ["cases"], "summary": "List cases", "produces": ["application/json"]}},
    "/api/cases/export": {"get": {"tags": ["cases"], "summary": "Export cases", "produces": ["application/json"]}},
    "/api/conversations": {"get": {"tags": ["conversations"], "summary": "List conversations", "produces": ["application/json"]}},
    "/api/conversations/{phone}": {"get": {"tags": ["conversations"], "summary": "Conversation detail", "produces": ["application/json"]}},
    "/api/satisfaction": {"get": {"tags": ["satisfaction"], "summary": "Satisfaction summary", "produces": ["application/json"]}},
    "/api/reports": {"get": {"tags": ["reports"], "summary": "Periodic report", "produces": ["application/json"]}}
  }
}`

func init() {
	swag.Register(swag.Name, &s{})
}

type s struct{}

func (s *s) ReadDoc() string {
	return docTemplate
}
