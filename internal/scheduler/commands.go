package scheduler

import "github.com/cachewarden/cachewarden/internal/config"

// invalidateCommand builds the resolver flush invocation for name/typeArg,
// selecting the direct or containerized template per spec §4.F.
func invalidateCommand(cfg config.RefreshConfig, name, typeArg string) (cmd string, args []string) {
	if cfg.WeRunningDocker {
		return "docker", []string{"exec", "-it", cfg.DockerContainerName, "unbound-control", "flush", name, typeArg}
	}
	return "unbound-control", []string{"flush", name, typeArg}
}

// repopulateCommand builds the resolver re-query invocation for
// name/typeArg, selecting the direct or containerized template.
func repopulateCommand(cfg config.RefreshConfig, name, typeArg string) (cmd string, args []string) {
	if cfg.WeRunningDocker {
		return "docker", []string{"exec", "-it", cfg.DockerContainerName, "dig", "-t", typeArg, name}
	}
	return "dig", []string{name, "-t", typeArg}
}
