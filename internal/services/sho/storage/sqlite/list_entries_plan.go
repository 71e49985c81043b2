package sqlite

import (
	"fmt"

	"github.com/louisbranch/sho/internal/services/sho/storage/filter"
)

type listEntriesSQLPlan struct {
	whereClause      string
	params           []any
	limitClause      string
	pageSize         int
	countWhereClause string
	countParams      []any
}

// buildListEntriesPlan fetches one row past the page so the caller can tell
// whether another page exists. The count ignores the cursor.
func buildListEntriesPlan(gameID string, afterSeq int64, pageSize int, cond filter.SQLCondition) listEntriesSQLPlan {
	countWhereClause := "game_id = ?"
	countParams := []any{gameID}
	if !cond.Empty() {
		countWhereClause += " AND " + cond.Clause
		countParams = append(countParams, cond.Params...)
	}

	whereClause := countWhereClause
	params := append([]any(nil), countParams...)
	if afterSeq > 0 {
		whereClause += " AND seq > ?"
		params = append(params, afterSeq)
	}

	return listEntriesSQLPlan{
		whereClause:      whereClause,
		params:           params,
		limitClause:      fmt.Sprintf("LIMIT %d", pageSize+1),
		pageSize:         pageSize,
		countWhereClause: countWhereClause,
		countParams:      countParams,
	}
}
