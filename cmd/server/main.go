package main

import (
	"github.com/OFFIS-RIT/lexgraph/backend/internal/server"
	"github.com/OFFIS-RIT/lexgraph/backend/internal/util"

	_ "github.com/lib/pq"
)

func main() {
	util.LoadEnv()
	closeLog := util.InitLogger()
	defer closeLog()

	server.Init()
}
