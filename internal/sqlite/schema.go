// File path: internal/sqlite/schema.go
package sqlite

// Dimension tables carry a nat_key column holding the normalized natural key
// computed in Go. SQLite treats NULLs as distinct inside UNIQUE constraints,
// so a multi-column UNIQUE over nullable fields would not deduplicate; the
// single NOT NULL nat_key does, and its unique index is the backstop when two
// uploads race on the same combination.
// Connection pragmas (WAL, foreign keys, busy timeout) live in the DSN; the
// statements here are DDL only so the whole migration can run in one
// transaction.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS sequencing_technologies (
                id INTEGER PRIMARY KEY AUTOINCREMENT,
                nat_key TEXT NOT NULL UNIQUE,
                technology TEXT NOT NULL,
                target TEXT NOT NULL DEFAULT 'WGS',
                platform_type TEXT NOT NULL,
                platform_name TEXT NOT NULL,
                platform_version TEXT
        );`,
	`CREATE TABLE IF NOT EXISTS variant_callers (
                id INTEGER PRIMARY KEY AUTOINCREMENT,
                nat_key TEXT NOT NULL UNIQUE,
                name TEXT NOT NULL,
                type TEXT NOT NULL,
                version TEXT NOT NULL,
                model TEXT
        );`,
	`CREATE TABLE IF NOT EXISTS aligners (
                id INTEGER PRIMARY KEY AUTOINCREMENT,
                nat_key TEXT NOT NULL UNIQUE,
                name TEXT NOT NULL,
                version TEXT NOT NULL DEFAULT ''
        );`,
	`CREATE TABLE IF NOT EXISTS truth_sets (
                id INTEGER PRIMARY KEY AUTOINCREMENT,
                nat_key TEXT NOT NULL UNIQUE,
                name TEXT NOT NULL,
                version TEXT NOT NULL DEFAULT '',
                reference TEXT NOT NULL DEFAULT '',
                sample TEXT NOT NULL DEFAULT ''
        );`,
	`CREATE TABLE IF NOT EXISTS benchmark_tools (
                id INTEGER PRIMARY KEY AUTOINCREMENT,
                nat_key TEXT NOT NULL UNIQUE,
                name TEXT NOT NULL,
                version TEXT NOT NULL DEFAULT ''
        );`,
	`CREATE TABLE IF NOT EXISTS variants (
                id INTEGER PRIMARY KEY AUTOINCREMENT,
                nat_key TEXT NOT NULL UNIQUE,
                type TEXT NOT NULL DEFAULT '',
                size TEXT NOT NULL DEFAULT '',
                origin TEXT NOT NULL DEFAULT '',
                is_phased INTEGER NOT NULL DEFAULT 0
        );`,
	`CREATE TABLE IF NOT EXISTS quality_controls (
                id INTEGER PRIMARY KEY AUTOINCREMENT,
                nat_key TEXT NOT NULL UNIQUE,
                mean_coverage REAL,
                read_length REAL,
                mean_read_length REAL,
                mean_insert_size REAL
        );`,
	`CREATE TABLE IF NOT EXISTS chemistries (
                id INTEGER PRIMARY KEY AUTOINCREMENT,
                nat_key TEXT NOT NULL UNIQUE,
                name TEXT NOT NULL,
                version TEXT NOT NULL DEFAULT '',
                technology TEXT NOT NULL DEFAULT '',
                platform TEXT NOT NULL DEFAULT ''
        );`,
	`CREATE TABLE IF NOT EXISTS experiments (
                id INTEGER PRIMARY KEY,
                name TEXT NOT NULL,
                description TEXT NOT NULL DEFAULT '',
                created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
                is_public INTEGER NOT NULL DEFAULT 0,
                owner_id INTEGER,
                owner_username TEXT NOT NULL DEFAULT '',
                file_name TEXT NOT NULL DEFAULT '',
                sequencing_technology_id INTEGER,
                variant_caller_id INTEGER,
                aligner_id INTEGER,
                truth_set_id INTEGER,
                benchmark_tool_id INTEGER,
                variant_id INTEGER,
                quality_control_id INTEGER,
                chemistry_id INTEGER,
                FOREIGN KEY(sequencing_technology_id) REFERENCES sequencing_technologies(id),
                FOREIGN KEY(variant_caller_id) REFERENCES variant_callers(id),
                FOREIGN KEY(aligner_id) REFERENCES aligners(id),
                FOREIGN KEY(truth_set_id) REFERENCES truth_sets(id),
                FOREIGN KEY(benchmark_tool_id) REFERENCES benchmark_tools(id),
                FOREIGN KEY(variant_id) REFERENCES variants(id),
                FOREIGN KEY(quality_control_id) REFERENCES quality_controls(id),
                FOREIGN KEY(chemistry_id) REFERENCES chemistries(id)
        );`,
	`CREATE TABLE IF NOT EXISTS overall_results (
                id INTEGER PRIMARY KEY AUTOINCREMENT,
                experiment_id INTEGER NOT NULL,
                variant_type TEXT NOT NULL,
                metric_recall REAL,
                metric_precision REAL,
                metric_f1_score REAL,
                truth_total INTEGER,
                truth_tp INTEGER,
                truth_fn INTEGER,
                query_total INTEGER,
                query_tp INTEGER,
                query_fp INTEGER,
                FOREIGN KEY(experiment_id) REFERENCES experiments(id) ON DELETE CASCADE,
                UNIQUE(experiment_id, variant_type)
        );`,
	`CREATE TABLE IF NOT EXISTS benchmark_results (
                id INTEGER PRIMARY KEY AUTOINCREMENT,
                experiment_id INTEGER NOT NULL,
                variant_type TEXT NOT NULL,
                subtype TEXT NOT NULL DEFAULT 'ALL_SUBTYPES',
                subset TEXT NOT NULL,
                filter_type TEXT NOT NULL DEFAULT 'ALL',
                metric_recall REAL,
                metric_precision REAL,
                metric_f1_score REAL,
                subset_size REAL,
                subset_is_conf_size REAL,
                truth_total INTEGER,
                truth_total_het INTEGER,
                truth_total_homalt INTEGER,
                truth_tp INTEGER,
                truth_tp_het INTEGER,
                truth_tp_homalt INTEGER,
                truth_fn INTEGER,
                truth_fn_het INTEGER,
                truth_fn_homalt INTEGER,
                query_total INTEGER,
                query_total_het INTEGER,
                query_total_homalt INTEGER,
                query_tp INTEGER,
                query_tp_het INTEGER,
                query_tp_homalt INTEGER,
                query_fp INTEGER,
                query_fp_het INTEGER,
                query_fp_homalt INTEGER,
                query_unk INTEGER,
                query_unk_het INTEGER,
                query_unk_homalt INTEGER,
                FOREIGN KEY(experiment_id) REFERENCES experiments(id) ON DELETE CASCADE,
                UNIQUE(experiment_id, variant_type, subtype, subset, filter_type)
        );`,
	`CREATE INDEX IF NOT EXISTS idx_experiments_owner ON experiments(owner_id);`,
	`CREATE INDEX IF NOT EXISTS idx_experiments_public ON experiments(is_public);`,
	`CREATE INDEX IF NOT EXISTS idx_overall_results_experiment ON overall_results(experiment_id);`,
	`CREATE INDEX IF NOT EXISTS idx_benchmark_results_experiment ON benchmark_results(experiment_id);`,
	`CREATE INDEX IF NOT EXISTS idx_benchmark_results_subset ON benchmark_results(subset, variant_type);`,
}
