package store

const schemaSQL = `
CREATE TABLE IF NOT EXISTS projects (
    file_path            TEXT NOT NULL,
    project_id           TEXT NOT NULL,
    project_name         TEXT,
    budget               REAL,
    start_date           TEXT,
    end_date             TEXT,
    parsed_at            TEXT NOT NULL,
    PRIMARY KEY (file_path, project_id)
);

CREATE TABLE IF NOT EXISTS spend_points (
    file_path            TEXT NOT NULL,
    project_id           TEXT NOT NULL,
    date                 TEXT NOT NULL,
    cumulative_spend     REAL NOT NULL,
    FOREIGN KEY (file_path, project_id)
        REFERENCES projects(file_path, project_id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS milestones (
    file_path            TEXT NOT NULL,
    project_id           TEXT NOT NULL,
    name                 TEXT NOT NULL,
    date                 TEXT NOT NULL,
    PRIMARY KEY (file_path, project_id, name, date),
    FOREIGN KEY (file_path, project_id)
        REFERENCES projects(file_path, project_id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS file_tracker (
    file_path            TEXT PRIMARY KEY,
    mtime_ns             INTEGER NOT NULL,
    size_bytes           INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_points_project ON spend_points(file_path, project_id);
CREATE INDEX IF NOT EXISTS idx_projects_id ON projects(project_id);
`
