package wasi

import "slices"

// hostFunctions lists the native functions the wamr-ext runtime registers per import module.
// A nil list means every function of the module is provided.
var hostFunctions = map[string][]string{
	"wasi_snapshot_preview1": nil,
	"env": {
		"aligned_alloc",
	},
	"fs_ext": {
		"fd_statvfs",
		"fd_fcntl",
	},
	"socket_ext": {
		"sock_open",
		"sock_bind",
		"sock_connect",
		"sock_listen",
		"sock_accept",
		"sock_getsockname",
		"sock_getpeername",
		"sock_shutdown",
		"sock_getopt",
		"sock_setopt",
		"sock_recvmsg",
		"sock_sendmsg",
		"sock_getifaddrs",
	},
	"pthread_ext": {
		"pthread_mutex_init",
		"pthread_mutex_lock",
		"pthread_mutex_unlock",
		"pthread_mutex_trylock",
		"pthread_mutex_timedlock",
		"pthread_mutex_destroy",
		"pthread_cond_init",
		"pthread_cond_destroy",
		"pthread_cond_wait",
		"pthread_cond_timedwait",
		"pthread_cond_broadcast",
		"pthread_cond_signal",
		"pthread_rwlock_init",
		"pthread_rwlock_destroy",
		"pthread_rwlock_rdlock",
		"pthread_rwlock_tryrdlock",
		"pthread_rwlock_timedrdlock",
		"pthread_rwlock_wrlock",
		"pthread_rwlock_trywrlock",
		"pthread_rwlock_timedwrlock",
		"pthread_rwlock_unlock",
		"pthread_setname_np",
		"pthread_getname_np",
	},
}

// Provided reports whether the wamr-ext runtime resolves the import module.name.
func Provided(module, name string) bool {
	names, ok := hostFunctions[module]
	if !ok {
		return false
	}
	return names == nil || slices.Contains(names, name)
}
