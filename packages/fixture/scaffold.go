package fixture

import (
	"fmt"
	"os"
	"path/filepath"
)

const sourceTemplate = `#include <cstring>
#include <http/http.h>

int main() {
  http::Router router;
  router.add("/", http::Method::GET, [](const http::Request&) {
    return http::Response("hello world");
  });

  http::Server server(router);
  if(server.port(%d).run() < 0) {
    std::perror(std::strerror(errno));
    std::exit(EXIT_FAILURE);
  }

  return 0;
}
`

// Scaffold creates the directory and fixture files of a new case serving
// "hello world" on port. Existing files are only replaced when force is set.
// It returns the paths it wrote.
func Scaffold(root, name string, port int, force bool) ([]string, error) {
	c, err := Load(root, name)
	if err != nil {
		return nil, err
	}

	files := []struct {
		path    string
		content string
	}{
		{c.SourcePath, fmt.Sprintf(sourceTemplate, port)},
		{c.RequestScriptPath, fmt.Sprintf("-s http://localhost:%d/\n", port)},
		{c.AnswersPath, "hello world\n"},
	}

	if !force {
		for _, f := range files {
			if _, err := os.Stat(f.path); err == nil {
				return nil, fmt.Errorf("file already exists: %s (use --force to overwrite)", f.path)
			}
		}
	}

	if err := os.MkdirAll(c.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create case directory: %w", err)
	}

	var written []string
	for _, f := range files {
		if err := os.WriteFile(f.path, []byte(f.content), 0o644); err != nil {
			return written, fmt.Errorf("failed to create %s: %w", filepath.Base(f.path), err)
		}
		written = append(written, f.path)
	}
	return written, nil
}
