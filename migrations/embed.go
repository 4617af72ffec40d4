// Package migrations 内嵌公告模块的数据库迁移脚本
package migrations

import "embed"

// FS 迁移脚本文件系统
//
//go:embed *.sql
var FS embed.FS
