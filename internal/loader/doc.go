// Package loader builds a config.Configuration from HCL files.
//
// The configuration file holds settings, type aliases, environments and the
// paths of mapper files:
//
//	settings {
//	  auto_mapping_behavior = "full"
//	}
//	type_alias "User" { type = "example.com/app.User" }
//	default_environment = "dev"
//	environment "dev" {
//	  data_source "SQLITE" {
//	    properties = { path = env("APP_DB", "app.db") }
//	  }
//	}
//	mappers { paths = ["mappers"] }
//
// Mapper files declare caches, result maps and statements per namespace:
//
//	mapper "users" {
//	  cache {}
//	  result_map "userMap" {
//	    type = "User"
//	    id { property = "ID" column = "id" }
//	    result { property = "Name" column = "name" }
//	  }
//	  select "findAll" {
//	    sql        = "SELECT id, name FROM users"
//	    result_map = "userMap"
//	  }
//	}
//
// Declarations may refer to elements of files loaded later. Those are queued
// on the configuration and retried after every file; the caller runs the
// final pass once mapper types are bound as well.
package loader
