package server

// Static documentation surfaces. Both live on the rate limit exempt list so
// a banned client can still read how the API behaves.

const docsPage = `<!DOCTYPE html>
<html>
<head><title>Playsight API</title></head>
<body>
<h1>Playsight API</h1>
<p>Machine-readable schema at <a href="/openapi.json">/openapi.json</a>.</p>
<ul>
  <li>POST /api/auth/register</li>
  <li>POST /api/auth/login</li>
  <li>POST /api/analysis/ai &mdash; AI coaching analysis (quota gated)</li>
  <li>POST /api/analysis/file &mdash; demo file analysis (quota gated)</li>
</ul>
<p>All endpoints outside /health, /docs, /openapi.json and /metrics are rate
limited per client. Repeated violations lead to a temporary block.</p>
</body>
</html>
`

const openAPISpec = `{
  "openapi": "3.0.3",
  "info": {"title": "Playsight API", "version": "1.0.0"},
  "paths": {
    "/api/auth/register": {"post": {"summary": "Create an account"}},
    "/api/auth/login": {"post": {"summary": "Obtain a session token"}},
    "/api/analysis/ai": {"post": {"summary": "Request AI coaching analysis"}},
    "/api/analysis/file": {"post": {"summary": "Request demo file analysis"}},
    "/health": {"get": {"summary": "Service health"}},
    "/metrics": {"get": {"summary": "Prometheus metrics"}}
  }
}
`
