// This file is generated! DO NOT EDIT

package security

var keyParamsTemplate = "%echo Generating repository signing key\nKey-Type: RSA\nKey-Length: 4096\nKey-Usage: sign\nName-Real: {{ .Name }}\n{{- if .Comment }}\nName-Comment: {{ .Comment }}\n{{- end }}\n{{- if .Email }}\nName-Email: {{ .Email }}\n{{- end }}\nExpire-Date: {{ .Expire }}\n{{- if .Passphrase }}\nPassphrase: {{ .Passphrase }}\n{{- else }}\n%no-protection\n{{- end }}\n%commit\n%echo Done\n"
