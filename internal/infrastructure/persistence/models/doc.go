// Package models contains the GORM persistence models for the settings
// table. Domain entities stay free of ORM tags; the models here convert to
// and from them.
package models
