package capture

//go:generate go run github.com/cilium/ebpf/cmd/bpf2go -cc clang -cflags "-O2 -g -Wall" -target bpfel observer bpf/dns_observer.c -- -I bpf/headers
