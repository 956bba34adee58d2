package visibility

import (
	"database/sql/driver"
	"encoding/json"

	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// Scan normalizes whatever the column holds, so legacy or hand-edited rows come back
// complete. A NULL column yields Defaults().
func (s *Settings) Scan(src any) error {
	*s = Normalize(src)
	return nil
}

// Value always writes all six keys.
func (s Settings) Value() (driver.Value, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func (Settings) GormDataType() string {
	return "json"
}

func (Settings) GormDBDataType(db *gorm.DB, _ *schema.Field) string {
	switch db.Dialector.Name() {
	case "postgres":
		return "JSONB"
	case "mysql":
		return "JSON"
	}
	return "TEXT"
}
