package context

import (
	"os"
	"testing"

	"github.com/gin-gonic/gin"

	i18npkg "github.com/xzzpig/content-rest/internal/i18n"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	if err := i18npkg.Init(); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}
