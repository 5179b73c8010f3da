//go:build noisereduce_oldmethod

package noisereduce

const oldMethodAvailable = true
