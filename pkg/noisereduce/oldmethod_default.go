//go:build !noisereduce_oldmethod

package noisereduce

// oldMethodAvailable mirrors the original's OLD_METHOD_AVAILABLE compile
// flag: classify.MethodOld exists as an extension point but Settings
// rejects it unless this build is compiled with -tags noisereduce_oldmethod.
const oldMethodAvailable = false
