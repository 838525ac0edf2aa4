package repository

import (
	"context"
	"database/sql"
	"strings"
)

// CommandRepo serves the command table and parameter valid values.
// The screen engine treats this table as read-only; writes happen
// only through seeding.
type CommandRepo struct {
	db *sql.DB
}

func NewCommandRepo(db *sql.DB) *CommandRepo {
	return &CommandRepo{db: db}
}

// List returns commands whose name contains filter (case-insensitive),
// sorted by name. An empty filter returns the whole table.
func (r *CommandRepo) List(ctx context.Context, filter string) ([]CommandEntry, error) {
	filter = strings.ToUpper(strings.TrimSpace(filter))
	var (
		rows *sql.Rows
		err  error
	)
	if filter == "" {
		rows, err = r.db.QueryContext(ctx,
			`SELECT command_name, text_description, screen_name FROM commands ORDER BY command_name`)
	} else {
		rows, err = r.db.QueryContext(ctx, `
		SELECT command_name, text_description, screen_name FROM commands
		WHERE command_name LIKE ? ORDER BY command_name`, "%"+filter+"%")
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []CommandEntry
	for rows.Next() {
		var c CommandEntry
		if err := rows.Scan(&c.Name, &c.Description, &c.ScreenName); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *CommandRepo) Get(ctx context.Context, name string) (*CommandEntry, error) {
	name = strings.ToUpper(strings.TrimSpace(name))
	var c CommandEntry
	err := r.db.QueryRowContext(ctx,
		`SELECT command_name, text_description, screen_name FROM commands WHERE command_name = ?`,
		name).Scan(&c.Name, &c.Description, &c.ScreenName)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CommandRepo) Parameters(ctx context.Context, command string) ([]CommandParameter, error) {
	command = strings.ToUpper(strings.TrimSpace(command))
	rows, err := r.db.QueryContext(ctx, `
	SELECT command_name, parm_name, ordinal, prompt_text, data_type, length, default_val, required
	FROM command_parameters WHERE command_name = ? ORDER BY ordinal`, command)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []CommandParameter
	for rows.Next() {
		var p CommandParameter
		if err := rows.Scan(&p.CommandName, &p.Name, &p.Ordinal, &p.PromptText,
			&p.DataType, &p.Length, &p.DefaultVal, &p.Required); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// ValidValues returns the ordered enumerable values for one command
// parameter, or an empty slice when the parameter is free-form.
func (r *CommandRepo) ValidValues(ctx context.Context, command, parm string) ([]ValidValue, error) {
	command = strings.ToUpper(strings.TrimSpace(command))
	parm = strings.ToUpper(strings.TrimSpace(parm))
	rows, err := r.db.QueryContext(ctx, `
	SELECT valid_value, text_description FROM parameter_values
	WHERE command_name = ? AND parm_name = ?
	ORDER BY ordinal, valid_value`, command, parm)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []ValidValue
	for rows.Next() {
		var v ValidValue
		if err := rows.Scan(&v.Value, &v.Description); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (r *CommandRepo) Upsert(ctx context.Context, c CommandEntry) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO commands(command_name, text_description, screen_name)
	VALUES (?, ?, ?)
	ON CONFLICT(command_name) DO UPDATE SET
	 text_description=excluded.text_description,
	 screen_name=excluded.screen_name;`,
		strings.ToUpper(strings.TrimSpace(c.Name)), c.Description, c.ScreenName)
	return err
}

func (r *CommandRepo) UpsertParameter(ctx context.Context, p CommandParameter) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO command_parameters(command_name, parm_name, ordinal, prompt_text, data_type, length, default_val, required)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(command_name, parm_name) DO UPDATE SET
	 ordinal=excluded.ordinal,
	 prompt_text=excluded.prompt_text,
	 data_type=excluded.data_type,
	 length=excluded.length,
	 default_val=excluded.default_val,
	 required=excluded.required;`,
		p.CommandName, p.Name, p.Ordinal, p.PromptText, p.DataType, p.Length, p.DefaultVal, p.Required)
	return err
}

func (r *CommandRepo) UpsertValidValue(ctx context.Context, command, parm string, ordinal int, v ValidValue) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO parameter_values(command_name, parm_name, valid_value, text_description, ordinal)
	VALUES (?, ?, ?, ?, ?)
	ON CONFLICT(command_name, parm_name, valid_value) DO UPDATE SET
	 text_description=excluded.text_description,
	 ordinal=excluded.ordinal;`,
		command, parm, v.Value, v.Description, ordinal)
	return err
}
