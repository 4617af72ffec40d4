package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/pressly/goose/v3"

	"announcements/config"
	"announcements/migrations"
	"announcements/pkg/database"
	"announcements/pkg/logger"
)

const usage = `用法: migrate [up|down|status|version|redo|up-to VERSION|down-to VERSION]`

func main() {
	flag.Usage = func() { fmt.Fprintln(os.Stderr, usage) }
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("加载配置文件失败: %v", err)
	}

	logger := logger.NewLoggerWithConfig(cfg.LogLevel, cfg.LogFile)
	defer logger.Close()

	db, err := database.NewMySQLConnection(cfg.Database)
	if err != nil {
		logger.Fatal("无法链接到数据库", err)
	}
	defer db.Close()

	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("mysql"); err != nil {
		logger.Fatal("设置迁移方言失败", err)
	}

	if err := goose.Run(args[0], db.DB, ".", args[1:]...); err != nil {
		logger.Fatal("执行迁移失败", "command", args[0], "error", err)
	}
	logger.Info("迁移执行完成", "command", args[0])
}
