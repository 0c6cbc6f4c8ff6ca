// Package minio stores geoprefix snapshots in MinIO and other S3-compatible
// services (Ceph, SeaweedFS, Garage) without pulling in the AWS SDK.
//
//	client, err := minio.New("localhost:9000", &minio.Options{
//	    Creds: credentials.NewStaticV4("minioadmin", "minioadmin", ""),
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	store := minioblob.NewStore(client, "my-bucket", minioblob.WithPrefix("indexes"))
//	err = ix.Save(ctx, store, "shapes.gpti")
package minio
