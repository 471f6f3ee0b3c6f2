package schema

import "fmt"

// ExampleQuery is a ready-to-run starter query derived from the schema.
type ExampleQuery struct {
	Description string `json:"description"`
	SQL         string `json:"sql"`
}

// Examples suggests starter queries per table: a preview, a row count,
// and a group-by over the first foreign-key column when one exists.
func (s *Schema) Examples() []ExampleQuery {
	var examples []ExampleQuery
	for _, t := range s.Tables {
		examples = append(examples,
			ExampleQuery{
				Description: fmt.Sprintf("First rows of %s", t.Name),
				SQL:         fmt.Sprintf("SELECT * FROM %s LIMIT 10", t.Name),
			},
			ExampleQuery{
				Description: fmt.Sprintf("Row count of %s", t.Name),
				SQL:         fmt.Sprintf("SELECT COUNT(*) AS total FROM %s", t.Name),
			},
		)
		for _, c := range t.Columns {
			if !c.ForeignKey {
				continue
			}
			examples = append(examples, ExampleQuery{
				Description: fmt.Sprintf("%s grouped by %s", t.Name, c.Name),
				SQL: fmt.Sprintf("SELECT %s, COUNT(*) AS total FROM %s GROUP BY %s ORDER BY total DESC",
					c.Name, t.Name, c.Name),
			})
			break
		}
	}
	return examples
}
