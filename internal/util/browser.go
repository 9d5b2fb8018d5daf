package util

import (
	"fmt"
	"os/exec"
	"runtime"
)

// browserCommand 各平台打开默认浏览器的命令
func browserCommand(goos, url string) (string, []string) {
	switch goos {
	case "windows":
		// rundll32 比 cmd /c start 更稳定，兼容 Windows 7+
		return "rundll32", []string{"url.dll,FileProtocolHandler", url}
	case "darwin":
		return "open", []string{url}
	default:
		return "xdg-open", []string{url}
	}
}

// fallbackBrowsers 主方式失败时依次尝试
func fallbackBrowsers(goos string) []string {
	switch goos {
	case "windows":
		return []string{"explorer"}
	case "linux":
		return []string{"google-chrome", "firefox", "chromium-browser", "sensible-browser"}
	}
	return nil
}

// OpenBrowser 打开默认浏览器，失败时尝试备选浏览器
func OpenBrowser(url string) error {
	name, args := browserCommand(runtime.GOOS, url)
	err := exec.Command(name, args...).Start()
	if err == nil {
		return nil
	}

	for _, browser := range fallbackBrowsers(runtime.GOOS) {
		if exec.Command(browser, url).Start() == nil {
			return nil
		}
	}
	return fmt.Errorf("open browser: %w", err)
}

// LocalURL 本机服务地址
func LocalURL(port int) string {
	return fmt.Sprintf("http://localhost:%d", port)
}
