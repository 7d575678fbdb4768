package store

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// RemoteGateway speaks the SPARQL 1.1 protocol to an external store endpoint
// (e.g. an rdf4j repository). Queries go to queryURL, updates to updateURL.
type RemoteGateway struct {
	queryURL  string
	updateURL string
	hc        *http.Client
	log       *zap.SugaredLogger
}

func NewRemoteGateway(queryURL, updateURL string, log *zap.SugaredLogger) *RemoteGateway {
	if updateURL == "" {
		// rdf4j convention: updates on the statements sub-resource
		updateURL = strings.TrimRight(queryURL, "/") + "/statements"
	}
	return &RemoteGateway{
		queryURL:  queryURL,
		updateURL: updateURL,
		hc:        &http.Client{Timeout: 30 * time.Second},
		log:       log,
	}
}

type sparqlResults struct {
	Results struct {
		Bindings []map[string]struct {
			Type  string `json:"type"`
			Value string `json:"value"`
		} `json:"bindings"`
	} `json:"results"`
}

func (g *RemoteGateway) Select(ctx context.Context, q SelectQuery, auth Authentication, required Authority) ([]Bindings, error) {
	if err := authorize(auth, required); err != nil {
		return nil, err
	}
	body, err := g.post(ctx, g.queryURL, "application/sparql-query", "application/sparql-results+json", RenderSelect(q))
	if err != nil {
		return nil, err
	}
	var res sparqlResults
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, fmt.Errorf("decode sparql results: %w", err)
	}
	out := make([]Bindings, 0, len(res.Results.Bindings))
	for _, row := range res.Results.Bindings {
		b := Bindings{}
		for name, cell := range row {
			if cell.Type == "uri" {
				b[Var(name)] = IRI(cell.Value)
			} else {
				b[Var(name)] = Literal(cell.Value)
			}
		}
		out = append(out, b)
	}
	return out, nil
}

func (g *RemoteGateway) Insert(ctx context.Context, facts []Triple, auth Authentication, required Authority) error {
	if err := authorize(auth, required); err != nil {
		return err
	}
	_, err := g.post(ctx, g.updateURL, "application/sparql-update", "", RenderInsertData(facts))
	return err
}

func (g *RemoteGateway) Modify(ctx context.Context, q ModifyQuery, auth Authentication, required Authority) error {
	if err := authorize(auth, required); err != nil {
		return err
	}
	_, err := g.post(ctx, g.updateURL, "application/sparql-update", "", RenderModify(q))
	return err
}

func (g *RemoteGateway) Construct(ctx context.Context, q SelectQuery, auth Authentication, required Authority) ([]Triple, error) {
	if err := authorize(auth, required); err != nil {
		return nil, err
	}
	body, err := g.post(ctx, g.queryURL, "application/sparql-query", "application/n-triples", RenderConstruct(q))
	if err != nil {
		return nil, err
	}
	return parseNTriples(string(body))
}

func (g *RemoteGateway) post(ctx context.Context, url, contentType, accept, payload string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", contentType)
	if accept != "" {
		req.Header.Set("Accept", accept)
	}
	g.log.Debugw("store call", "url", url, "bytes", len(payload))
	resp, err := g.hc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, ErrAuthorizationDenied
	}
	if resp.StatusCode/100 != 2 {
		return nil, fmt.Errorf("store endpoint %s: %s", url, strings.TrimSpace(string(body)))
	}
	return body, nil
}

// parseNTriples handles the plain subset the store emits for construct reads:
// IRIs in angle brackets and literal objects in quotes, one statement per line.
func parseNTriples(doc string) ([]Triple, error) {
	var out []Triple
	for _, line := range strings.Split(doc, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		t, err := parseNTripleLine(line)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

func parseNTripleLine(line string) (Triple, error) {
	rest := strings.TrimSuffix(line, ".")
	rest = strings.TrimSpace(rest)

	subj, rest, err := takeIRI(rest)
	if err != nil {
		return Triple{}, fmt.Errorf("n-triples subject: %w (%s)", err, line)
	}
	pred, rest, err := takeIRI(rest)
	if err != nil {
		return Triple{}, fmt.Errorf("n-triples predicate: %w (%s)", err, line)
	}
	rest = strings.TrimSpace(rest)
	var obj Term
	switch {
	case strings.HasPrefix(rest, "<"):
		o, _, oerr := takeIRI(rest)
		if oerr != nil {
			return Triple{}, fmt.Errorf("n-triples object: %w (%s)", oerr, line)
		}
		obj = o
	case strings.HasPrefix(rest, "\""):
		end := strings.LastIndex(rest, "\"")
		if end <= 0 {
			return Triple{}, fmt.Errorf("n-triples object: unterminated literal (%s)", line)
		}
		unescaped := strings.NewReplacer("\\\"", "\"", "\\\\", "\\", "\\n", "\n", "\\r", "\r").Replace(rest[1:end])
		obj = Literal(unescaped)
	default:
		return Triple{}, fmt.Errorf("n-triples object: unsupported term (%s)", line)
	}
	return Triple{Subject: subj, Predicate: pred, Object: obj}, nil
}

func takeIRI(s string) (IRI, string, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "<") {
		return "", s, fmt.Errorf("expected IRI")
	}
	end := strings.Index(s, ">")
	if end < 0 {
		return "", s, fmt.Errorf("unterminated IRI")
	}
	return IRI(s[1:end]), s[end+1:], nil
}
