package sim

import (
	"database/sql"
	"fmt"
	"reflect"
	"strings"

	"github.com/richard-senior/seasonsim/internal/logger"
	_ "modernc.org/sqlite"
)

var db *sql.DB

// Persistable is implemented by objects that can be stored in the
// forecast database. Schema comes from struct tags: column, dbtype,
// primary and index.
type Persistable interface {
	GetTableName() string
	GetPrimaryKey() map[string]any
	BeforeSave() error
}

// GetDB lazily opens the database connection
func GetDB() (*sql.DB, error) {
	if db == nil {
		var err error
		db, err = sql.Open("sqlite", Config.DatabasePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		if err = db.Ping(); err != nil {
			return nil, fmt.Errorf("failed to ping database: %w", err)
		}
		logger.Info("Database initialized", Config.DatabasePath)
	}
	return db, nil
}

// CloseDatabase closes the database connection
func CloseDatabase() error {
	if db != nil {
		err := db.Close()
		db = nil
		return err
	}
	return nil
}

// InitDatabase creates every table the application persists to
func InitDatabase() error {
	if err := CreateTable(&Fixture{}); err != nil {
		return fmt.Errorf("failed to create fixtures table: %w", err)
	}
	if err := CreateTable(&ForecastRow{}); err != nil {
		return fmt.Errorf("failed to create forecasts table: %w", err)
	}
	return nil
}

// CreateTable creates the table and indexes for a persistable object
// from its struct tags
func CreateTable(obj Persistable) error {
	d, err := GetDB()
	if err != nil {
		return err
	}

	tableName := obj.GetTableName()
	createSQL := generateCreateTableSQL(obj, tableName)
	logger.Debug("Creating table with SQL", createSQL)

	if _, err = d.Exec(createSQL); err != nil {
		return fmt.Errorf("failed to create table %s: %w", tableName, err)
	}

	for _, query := range generateIndexSQL(obj, tableName) {
		logger.Debug("Creating index with SQL", query)
		if _, err := d.Exec(query); err != nil {
			logger.Warn("Failed to create index", err)
		}
	}
	return nil
}

// generateCreateTableSQL generates CREATE TABLE SQL from struct tags
func generateCreateTableSQL(obj any, tableName string) string {
	objType := reflect.TypeOf(obj)
	if objType.Kind() == reflect.Ptr {
		objType = objType.Elem()
	}

	var columns []string
	var primaryKeys []string

	for i := 0; i < objType.NumField(); i++ {
		field := objType.Field(i)
		if !field.IsExported() {
			continue
		}

		dbType := field.Tag.Get("dbtype")
		if dbType == "" {
			continue
		}
		columnName := columnNameFor(field)

		if field.Tag.Get("primary") == "true" {
			primaryKeys = append(primaryKeys, columnName)
			dbType = strings.TrimSpace(strings.ReplaceAll(dbType, "PRIMARY KEY", ""))
		}
		columns = append(columns, fmt.Sprintf("%s %s", columnName, dbType))
	}

	if len(primaryKeys) > 0 {
		columns = append(columns, fmt.Sprintf("PRIMARY KEY (%s)", strings.Join(primaryKeys, ", ")))
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", tableName, strings.Join(columns, ", "))
}

// generateIndexSQL generates index creation SQL from struct tags
func generateIndexSQL(obj any, tableName string) []string {
	objType := reflect.TypeOf(obj)
	if objType.Kind() == reflect.Ptr {
		objType = objType.Elem()
	}

	var indexSQL []string
	for i := 0; i < objType.NumField(); i++ {
		field := objType.Field(i)
		if field.Tag.Get("index") == "" || field.Tag.Get("dbtype") == "" {
			continue
		}
		columnName := columnNameFor(field)
		indexName := fmt.Sprintf("idx_%s_%s", tableName, columnName)
		indexSQL = append(indexSQL,
			fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s ON %s(%s)", indexName, tableName, columnName))
	}
	return indexSQL
}

func columnNameFor(field reflect.StructField) string {
	if name := field.Tag.Get("column"); name != "" {
		return name
	}
	return strings.ToLower(field.Name)
}

// Save upserts the object. Re-running a simulation over the same season
// replaces the previous rows rather than accumulating duplicates.
func Save(obj Persistable) error {
	d, err := GetDB()
	if err != nil {
		return err
	}
	if err := obj.BeforeSave(); err != nil {
		return fmt.Errorf("before save hook failed: %w", err)
	}

	query, values := upsertSQL(obj)
	logger.Debug("Save SQL", query)

	if _, err = d.Exec(query, values...); err != nil {
		return fmt.Errorf("failed to save into %s: %w", obj.GetTableName(), err)
	}
	return nil
}

// BulkSave upserts many objects inside a single transaction
func BulkSave(objects []Persistable) error {
	d, err := GetDB()
	if err != nil {
		return err
	}

	tx, err := d.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, obj := range objects {
		if err := obj.BeforeSave(); err != nil {
			return fmt.Errorf("before save hook failed: %w", err)
		}
		query, values := upsertSQL(obj)
		if _, err := tx.Exec(query, values...); err != nil {
			return fmt.Errorf("failed to save into %s: %w", obj.GetTableName(), err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	logger.Debug("Bulk saved objects:", len(objects))
	return nil
}

// upsertSQL builds an INSERT OR REPLACE statement from struct tags
func upsertSQL(obj Persistable) (string, []any) {
	objValue := reflect.ValueOf(obj)
	objType := reflect.TypeOf(obj)
	if objValue.Kind() == reflect.Ptr {
		objValue = objValue.Elem()
		objType = objType.Elem()
	}

	var columns []string
	var placeholders []string
	var values []any

	for i := 0; i < objType.NumField(); i++ {
		field := objType.Field(i)
		if !field.IsExported() || field.Tag.Get("dbtype") == "" {
			continue
		}
		columns = append(columns, columnNameFor(field))
		placeholders = append(placeholders, "?")
		values = append(values, objValue.Field(i).Interface())
	}

	query := fmt.Sprintf("INSERT OR REPLACE INTO %s (%s) VALUES (%s)",
		obj.GetTableName(), strings.Join(columns, ", "), strings.Join(placeholders, ", "))
	return query, values
}

// Exists checks whether the object's primary key is already stored
func Exists(obj Persistable) (bool, error) {
	d, err := GetDB()
	if err != nil {
		return false, err
	}

	whereClause, values := buildWhereClause(obj.GetPrimaryKey())
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s", obj.GetTableName(), whereClause)

	var count int
	if err = d.QueryRow(query, values...).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to check existence in %s: %w", obj.GetTableName(), err)
	}
	return count > 0, nil
}

// Delete removes the object from the database by primary key
func Delete(obj Persistable) error {
	d, err := GetDB()
	if err != nil {
		return err
	}

	whereClause, values := buildWhereClause(obj.GetPrimaryKey())
	query := fmt.Sprintf("DELETE FROM %s WHERE %s", obj.GetTableName(), whereClause)

	if _, err = d.Exec(query, values...); err != nil {
		return fmt.Errorf("failed to delete from %s: %w", obj.GetTableName(), err)
	}
	return nil
}

// FindByPrimaryKey loads a single record into obj
func FindByPrimaryKey(obj Persistable, primaryKey map[string]any) error {
	d, err := GetDB()
	if err != nil {
		return err
	}

	tableName := obj.GetTableName()
	columns, destinations := getSelectData(obj)
	whereClause, values := buildWhereClause(primaryKey)

	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s",
		strings.Join(columns, ", "), tableName, whereClause)
	logger.Debug("FindByPrimaryKey SQL", query)

	if err = d.QueryRow(query, values...).Scan(destinations...); err != nil {
		if err == sql.ErrNoRows {
			return fmt.Errorf("record not found in %s", tableName)
		}
		return fmt.Errorf("failed to scan row from %s: %w", tableName, err)
	}
	return nil
}

// FindWhere loads all records matching a WHERE clause. The returned slice
// holds new instances of obj's concrete type.
func FindWhere(obj Persistable, whereClause string, args ...any) ([]any, error) {
	d, err := GetDB()
	if err != nil {
		return nil, err
	}

	tableName := obj.GetTableName()
	columns, _ := getSelectData(obj)

	query := fmt.Sprintf("SELECT %s FROM %s", strings.Join(columns, ", "), tableName)
	if whereClause != "" {
		query += " WHERE " + whereClause
	}
	logger.Debug("FindWhere SQL", query)

	rows, err := d.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", tableName, err)
	}
	defer rows.Close()

	objType := reflect.TypeOf(obj)
	if objType.Kind() == reflect.Ptr {
		objType = objType.Elem()
	}

	var results []any
	for rows.Next() {
		newObj := reflect.New(objType).Interface()
		_, destinations := getSelectData(newObj)
		if err := rows.Scan(destinations...); err != nil {
			return nil, fmt.Errorf("failed to scan row from %s: %w", tableName, err)
		}
		results = append(results, newObj)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows from %s: %w", tableName, err)
	}
	return results, nil
}

// FindAll loads every record of obj's type
func FindAll(obj Persistable) ([]any, error) {
	return FindWhere(obj, "")
}

// getSelectData extracts column names and scan destinations for SELECT
func getSelectData(obj any) ([]string, []any) {
	objValue := reflect.ValueOf(obj)
	objType := reflect.TypeOf(obj)
	if objValue.Kind() == reflect.Ptr {
		objValue = objValue.Elem()
		objType = objType.Elem()
	}

	var columns []string
	var destinations []any

	for i := 0; i < objType.NumField(); i++ {
		field := objType.Field(i)
		if !field.IsExported() || field.Tag.Get("dbtype") == "" {
			continue
		}
		columns = append(columns, columnNameFor(field))
		destinations = append(destinations, objValue.Field(i).Addr().Interface())
	}
	return columns, destinations
}

// buildWhereClause builds a WHERE clause from a primary key map
func buildWhereClause(primaryKey map[string]any) (string, []any) {
	var conditions []string
	var values []any

	for column, value := range primaryKey {
		conditions = append(conditions, fmt.Sprintf("%s = ?", column))
		values = append(values, value)
	}
	return strings.Join(conditions, " AND "), values
}
