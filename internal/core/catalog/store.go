package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"recipe-finder/internal/core/recipe"
	"recipe-finder/internal/pkg/common"

	_ "github.com/mattn/go-sqlite3"
)

// Store 以 SQLite 保存食譜目錄
type Store struct {
	db *sql.DB
}

// OpenStore 開啟資料庫並建立資料表
func OpenStore(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// 記憶體資料庫只存在於開啟中的連線
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close 關閉資料庫
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping 檢查資料庫連線
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS recipes (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			name TEXT NOT NULL,
			cuisine TEXT,
			tags TEXT,
			data TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_recipes_name ON recipes(name)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// ReplaceAll 在單一交易中以新資料取代全部食譜。
// 沒有 id 的食譜以載入順序（從 1 起算）作為 id，重複的 id 只保留第一筆。
func (s *Store) ReplaceAll(ctx context.Context, recipes []recipe.Recipe) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM recipes`); err != nil {
		return 0, fmt.Errorf("clearing recipes: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR IGNORE INTO recipes (id, name, cuisine, tags, data) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	count := 0
	for i, r := range recipes {
		if !r.ID.IsSet() {
			r.ID = recipe.Some(strconv.Itoa(i + 1))
		}
		data, err := json.Marshal(r.ToRaw())
		if err != nil {
			return 0, fmt.Errorf("encoding recipe %s: %w", r.ID, err)
		}
		res, err := stmt.ExecContext(ctx,
			r.ID.OrElse(""),
			r.Name,
			r.Cuisine.OrElse(""),
			strings.Join(r.Tags, ","),
			string(data),
		)
		if err != nil {
			return 0, fmt.Errorf("inserting recipe %s: %w", r.ID, err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			count++
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing recipes: %w", err)
	}
	return count, nil
}

// Count 食譜總數
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM recipes`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting recipes: %w", err)
	}
	return n, nil
}

// Search 名稱、菜系或標籤包含 query（不分大小寫）的食譜，依載入順序排列。
// query 為空時回傳全部。
func (s *Store) Search(ctx context.Context, query string) ([]recipe.Recipe, error) {
	where, args := matchClause(query)
	return s.query(ctx, `SELECT data FROM recipes`+where+` ORDER BY seq`, args...)
}

// Page 分頁搜尋，回傳該頁內容與符合總數
func (s *Store) Page(ctx context.Context, query string, offset, limit int) ([]recipe.Recipe, int, error) {
	where, args := matchClause(query)

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM recipes`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting matches: %w", err)
	}

	rows, err := s.query(ctx, `SELECT data FROM recipes`+where+` ORDER BY seq LIMIT ? OFFSET ?`,
		append(args, limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// Get 依 id 取得食譜，不存在時回傳 common.ErrNotFound
func (s *Store) Get(ctx context.Context, id string) (recipe.Recipe, error) {
	var data string
	err := s.db.QueryRowContext(ctx, `SELECT data FROM recipes WHERE id = ?`, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return recipe.Recipe{}, common.ErrNotFound
	}
	if err != nil {
		return recipe.Recipe{}, fmt.Errorf("querying recipe %s: %w", id, err)
	}
	return decodeRecipe(data)
}

func (s *Store) query(ctx context.Context, q string, args ...any) ([]recipe.Recipe, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("querying recipes: %w", err)
	}
	defer rows.Close()

	out := []recipe.Recipe{}
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scanning recipe: %w", err)
		}
		r, err := decodeRecipe(data)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// matchClause 組合不分大小寫的 LIKE 條件，% 與 _ 視為一般字元
func matchClause(query string) (string, []any) {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return "", nil
	}
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	pattern := "%" + replacer.Replace(q) + "%"
	return ` WHERE lower(name) LIKE ? ESCAPE '\' OR lower(cuisine) LIKE ? ESCAPE '\' OR lower(tags) LIKE ? ESCAPE '\'`,
		[]any{pattern, pattern, pattern}
}

func decodeRecipe(data string) (recipe.Recipe, error) {
	raw, err := common.DecodeAny([]byte(data))
	if err != nil {
		return recipe.Recipe{}, fmt.Errorf("decoding recipe: %w", err)
	}
	obj, _ := raw.(map[string]any)
	return recipe.NormalizeOne(obj), nil
}
