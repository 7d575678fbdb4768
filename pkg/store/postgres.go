package store

import (
	"context"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// PostgresGateway persists the graph in a single triples table. It carries the
// persistent-tenant data; the memory gateway serves everything ephemeral.
type PostgresGateway struct {
	pool *pgxpool.Pool
	log  *zap.SugaredLogger
}

func NewPostgresGateway(pool *pgxpool.Pool, log *zap.SugaredLogger) *PostgresGateway {
	return &PostgresGateway{pool: pool, log: log}
}

// EnsureSchema creates the triples table if missing. Safe to call repeatedly.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, `
CREATE TABLE IF NOT EXISTS triples (
  subject text NOT NULL,
  predicate text NOT NULL,
  object text NOT NULL,
  object_iri boolean NOT NULL DEFAULT false,
  PRIMARY KEY (subject, predicate, object, object_iri)
);
CREATE INDEX IF NOT EXISTS triples_predicate_object ON triples (predicate, object);
`)
	return err
}

func (g *PostgresGateway) match(ctx context.Context, s *IRI, p *IRI, o Term) ([]Triple, error) {
	var sb strings.Builder
	sb.WriteString("SELECT subject, predicate, object, object_iri FROM triples")
	var args []any
	var conds []string
	if s != nil {
		args = append(args, string(*s))
		conds = append(conds, "subject = $"+strconv.Itoa(len(args)))
	}
	if p != nil {
		args = append(args, string(*p))
		conds = append(conds, "predicate = $"+strconv.Itoa(len(args)))
	}
	if o != nil {
		_, isIRI := o.(IRI)
		args = append(args, termText(o))
		conds = append(conds, "object = $"+strconv.Itoa(len(args)))
		args = append(args, isIRI)
		conds = append(conds, "object_iri = $"+strconv.Itoa(len(args)))
	}
	if len(conds) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(conds, " AND "))
	}

	rows, err := g.pool.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Triple
	for rows.Next() {
		var subj, pred, obj string
		var objIRI bool
		if err := rows.Scan(&subj, &pred, &obj, &objIRI); err != nil {
			return nil, err
		}
		var term Term
		if objIRI {
			term = IRI(obj)
		} else {
			term = Literal(obj)
		}
		out = append(out, Triple{Subject: IRI(subj), Predicate: IRI(pred), Object: term})
	}
	return out, rows.Err()
}

func (g *PostgresGateway) Select(ctx context.Context, q SelectQuery, auth Authentication, required Authority) ([]Bindings, error) {
	if err := authorize(auth, required); err != nil {
		return nil, err
	}
	return solve(ctx, g, q.Where, q.Limit)
}

func (g *PostgresGateway) Insert(ctx context.Context, facts []Triple, auth Authentication, required Authority) error {
	if err := authorize(auth, required); err != nil {
		return err
	}
	return pgx.BeginFunc(ctx, g.pool, func(tx pgx.Tx) error {
		for _, t := range facts {
			if err := insertTriple(ctx, tx, t); err != nil {
				return err
			}
		}
		return nil
	})
}

func (g *PostgresGateway) Modify(ctx context.Context, q ModifyQuery, auth Authentication, required Authority) error {
	if err := authorize(auth, required); err != nil {
		return err
	}
	del, ins, err := expandModify(ctx, g, q)
	if err != nil {
		return err
	}
	return pgx.BeginFunc(ctx, g.pool, func(tx pgx.Tx) error {
		for _, t := range del {
			_, isIRI := t.Object.(IRI)
			if _, err := tx.Exec(ctx,
				`DELETE FROM triples WHERE subject=$1 AND predicate=$2 AND object=$3 AND object_iri=$4`,
				string(t.Subject), string(t.Predicate), termText(t.Object), isIRI); err != nil {
				return err
			}
		}
		for _, t := range ins {
			if err := insertTriple(ctx, tx, t); err != nil {
				return err
			}
		}
		return nil
	})
}

func (g *PostgresGateway) Construct(ctx context.Context, q SelectQuery, auth Authentication, required Authority) ([]Triple, error) {
	if err := authorize(auth, required); err != nil {
		return nil, err
	}
	rows, err := solve(ctx, g, q.Where, q.Limit)
	if err != nil {
		return nil, err
	}
	return constructTriples(q.Where, rows), nil
}

func insertTriple(ctx context.Context, tx pgx.Tx, t Triple) error {
	_, isIRI := t.Object.(IRI)
	_, err := tx.Exec(ctx,
		`INSERT INTO triples (subject, predicate, object, object_iri) VALUES ($1,$2,$3,$4) ON CONFLICT DO NOTHING`,
		string(t.Subject), string(t.Predicate), termText(t.Object), isIRI)
	return err
}
