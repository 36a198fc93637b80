package server

import (
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"
	"os"
	"path"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"szpion/config"
)

// frontendHandler はAPI以外のパスを処理します
// 開発モードではフロントエンドの開発サーバーへプロキシし、それ以外は静的ファイルを配信します
func frontendHandler(cfg *config.Config) (gin.HandlerFunc, error) {
	if cfg.DevMode {
		target, err := url.Parse(cfg.DevServerURL)
		if err != nil || target.Scheme == "" || target.Host == "" {
			return nil, fmt.Errorf("開発サーバーのURLが不正です: %q", cfg.DevServerURL)
		}
		return gin.WrapH(httputil.NewSingleHostReverseProxy(target)), nil
	}
	return staticHandler(cfg.StaticDir), nil
}

// staticHandler は dir 以下のファイルを配信します。"/" は index.html を返します
func staticHandler(dir string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
			c.AbortWithStatus(http.StatusNotFound)
			return
		}

		p := path.Clean("/" + c.Request.URL.Path)
		if p == "/" {
			p = "/index.html"
		}
		name := filepath.Join(dir, filepath.FromSlash(p))

		info, err := os.Stat(name)
		if err != nil || info.IsDir() {
			c.AbortWithStatus(http.StatusNotFound)
			return
		}
		c.File(name)
	}
}
