package ports

import "context"

// ImageStore puerto de salida hacia el almacenamiento de imágenes de perfil.
type ImageStore interface {
	// UploadImage sube el payload al bucket lógico y devuelve una URL estable.
	// Errores envuelven domain.ErrImageUpload.
	UploadImage(ctx context.Context, bucket string, payload []byte) (string, error)
	// DeleteImage borra la imagen referenciada por url. Una imagen inexistente no es error.
	// Errores envuelven domain.ErrImageDelete.
	DeleteImage(ctx context.Context, url string) error
}
