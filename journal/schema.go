package journal

const Schema = `
CREATE TABLE IF NOT EXISTS logs (
	id TEXT PRIMARY KEY,
	time DATETIME NOT NULL,
	name TEXT NOT NULL,
	category TEXT NOT NULL,
	message TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_logs_name_time ON logs(name, time);
`
