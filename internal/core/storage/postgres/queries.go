package postgres

// SQL queries for revision and series storage, keyed by normalized title

const (
	// queryHasRevisions reports whether any revision row exists for a title.
	queryHasRevisions = `
		SELECT EXISTS (
			SELECT 1 FROM revisions WHERE title = $1
		)
	`

	// queryDeleteRevisions clears a title before a (forced) re-fetch is written.
	queryDeleteRevisions = `DELETE FROM revisions WHERE title = $1`

	// queryInsertRevision writes one revision. seq preserves upstream order,
	// which the stable sort relies on for equal timestamps.
	queryInsertRevision = `
		INSERT INTO revisions (
			title, seq, rev_timestamp, size, comment, comment_hidden
		)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	// queryLoadRevisions returns a title's revisions in stored order.
	queryLoadRevisions = `
		SELECT rev_timestamp, size, comment, comment_hidden
		FROM revisions
		WHERE title = $1
		ORDER BY seq ASC
	`

	queryDeleteSeries = `DELETE FROM monthly_sizes WHERE title = $1`

	// queryInsertSeries keeps the unrounded average next to the output value.
	queryInsertSeries = `
		INSERT INTO monthly_sizes (
			title, month_start, avg_size, rounded_size
		)
		VALUES ($1, $2, $3, $4)
	`

	queryLoadSeries = `
		SELECT month_start, rounded_size
		FROM monthly_sizes
		WHERE title = $1
		ORDER BY month_start ASC
	`
)
