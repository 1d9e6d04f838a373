package models

// All lists the gorm models owned by lgflow for migrations.
var All = []any{
	&User{},
}
